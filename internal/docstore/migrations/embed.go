// Package migrations embeds the goose migrations of the document store schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
