// Package migrations embeds the goose migrations for the PostgreSQL
// catalog schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
