package migrations

import "embed"

// FS contains the SQLite migrations for the history store.
//
//go:embed *.sql
var FS embed.FS
