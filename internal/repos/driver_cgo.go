//go:build sqlite_cgo

package repos

// cgo SQLite (github.com/mattn/go-sqlite3).
//
// Build command:
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// BuildMode names the SQLite driver compiled in.
const BuildMode = "cgo"

const sqliteDriver = "sqlite3"

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1&_busy_timeout=5000"
}
