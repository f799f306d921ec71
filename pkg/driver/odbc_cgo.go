//go:build cgo

package driver

// The ODBC driver requires cgo (unixODBC) on non-Windows platforms, so
// its registration is confined to cgo builds.
import _ "github.com/alexbrainman/odbc"
