// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds every migration file. database.RunMigrations applies the *.up.sql ones.
//
//go:embed *.sql
var FS embed.FS
