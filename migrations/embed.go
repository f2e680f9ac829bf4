// Package migrations embeds the PostgreSQL schema for the snapshot store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
