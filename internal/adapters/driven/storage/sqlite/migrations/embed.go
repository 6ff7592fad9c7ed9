// Package migrations holds the SQLite schema as numbered up and down scripts.
package migrations

import "embed"

// FS holds every script; the store applies them in version order.
//
//go:embed *.sql
var FS embed.FS
