// Package migrations embeds the client-side SQLite schema migrations
// applied by goose on startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
