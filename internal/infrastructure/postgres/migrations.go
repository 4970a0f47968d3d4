package postgres

import "embed"

// Migrations holds the schema migrations under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the SQL files.
const MigrationsDir = "migrations"
