// Package wfmd reads and writes WFMD XCH4 grid files through libnetcdf.
//
// The package needs cgo. Builds with CGO_ENABLED=0 contain no loader here and
// fall back to package native.
package wfmd
