//go:build cgo

package store

import (
	"go.ngs.io/xch4-api/internal/adapter/store/wfmd"
	"go.ngs.io/xch4-api/internal/config"
	"go.ngs.io/xch4-api/internal/domain"
)

func init() {
	register(config.BackendNetCDFC, Backend{
		NewLoader: func() GridLoader { return wfmd.NewStore() },
		Create: func(path string, g *domain.GridSlice, netcdf4 bool) error {
			return wfmd.Create(path, g, wfmd.CreateOptions{NetCDF4: netcdf4})
		},
	})
}
