// Package migrations embeds the goose SQL migrations applied at API start-up.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
