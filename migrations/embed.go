// Package migrations carries the SQLite schema so tests and the server can
// migrate without depending on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
