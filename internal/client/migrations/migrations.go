// Package migrations embeds the goose migrations for the client's local
// database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
