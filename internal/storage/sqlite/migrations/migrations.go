package migrations

import "embed"

// Migrations holds the goose SQL migrations for the sqlite store
//
//go:embed *.sql
var Migrations embed.FS
