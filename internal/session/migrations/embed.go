// Package migrations embeds the goose migrations of the client session cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
