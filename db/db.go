package db

import "embed"

// Migrations holds one directory of goose SQL files per dialect.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS
