// Package migrations holds the PostgreSQL schema, embedded so the server
// and tests can migrate without a migrations directory on disk.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
