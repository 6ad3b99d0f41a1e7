//go:build !sqlite_cgo

package repos

// Pure Go SQLite (modernc.org/sqlite); no C toolchain required.

import (
	"strings"

	_ "modernc.org/sqlite"
)

// BuildMode names the SQLite driver compiled in.
const BuildMode = "purego"

const sqliteDriver = "sqlite"

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
