package migrations

import "embed"

// FS holds the history store schema migrations.
//
//go:embed *.sql
var FS embed.FS
