// Package migrations embeds the client inbox schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
