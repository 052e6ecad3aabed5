package store

import (
	"errors"

	"go.ngs.io/xch4-api/internal/adapter/store/native"
	"go.ngs.io/xch4-api/internal/config"
	"go.ngs.io/xch4-api/internal/domain"
)

func init() {
	register(config.BackendNative, Backend{
		NewLoader: func() GridLoader { return native.NewStore() },
		Create: func(path string, g *domain.GridSlice, netcdf4 bool) error {
			if netcdf4 {
				return errors.New("the native backend writes classic NetCDF only")
			}
			return native.Create(path, g)
		},
	})
}
