package store

import (
	"fmt"
	"sort"

	"go.ngs.io/xch4-api/internal/config"
	"go.ngs.io/xch4-api/internal/domain"
)

// GridLoader is the interface for loading subsets of WFMD XCH4 grid files
type GridLoader interface {
	// LoadGrid reads the cells inside the request's closed date range and
	// half-open spatial bounds (the file's declared extent when Bounds is nil)
	LoadGrid(req domain.LoadRequest) (*domain.GridSlice, error)
}

// CreateFunc writes a grid as a WFMD file.
type CreateFunc func(path string, g *domain.GridSlice, netcdf4 bool) error

// Backend is a NetCDF implementation compiled into this binary.
type Backend struct {
	NewLoader func() GridLoader
	Create    CreateFunc
}

// backends is filled by init functions in files guarded by build tags, so a
// build without cgo links only the pure-Go reader.
var backends = map[string]Backend{}

func register(name string, b Backend) {
	backends[name] = b
}

// Available lists the backends compiled into this binary.
func Available() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup validates a backend name and returns its implementation.
func Lookup(name string) (Backend, error) {
	name, err := config.ParseBackend(name)
	if err != nil {
		return Backend{}, err
	}
	b, ok := backends[name]
	if !ok {
		return Backend{}, fmt.Errorf("NetCDF backend %q is not available in this build (available: %v)", name, Available())
	}
	return b, nil
}

// New returns the loader for a backend name: config.BackendNetCDFC
// (libnetcdf) or config.BackendNative (pure Go).
func New(name string) (GridLoader, error) {
	b, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return b.NewLoader(), nil
}

// Create writes g with the named backend.
func Create(name, path string, g *domain.GridSlice, netcdf4 bool) error {
	b, err := Lookup(name)
	if err != nil {
		return err
	}
	return b.Create(path, g, netcdf4)
}
