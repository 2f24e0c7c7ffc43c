package persistence

import (
	"embed"
	"io/fs"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// MigrationFiles returns the goose migrations of the workshop tables with the
// .sql files at its root.
func MigrationFiles() fs.FS {
	sub, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		panic(err)
	}
	return sub
}
