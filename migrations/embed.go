// Package migrations содержит SQL-миграции для поддерживаемых СУБД.
package migrations

import "embed"

// Postgres содержит миграции для PostgreSQL.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite содержит миграции для SQLite.
//
//go:embed sqlite/*.sql
var SQLite embed.FS
