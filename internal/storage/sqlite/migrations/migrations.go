// Package migrations embeds the goose migrations for the embedded SQLite
// catalog schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
