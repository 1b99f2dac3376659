package store

import (
	"path/filepath"
	"testing"

	"gitlab.com/dirk.krummacker/contact-directory/internal/config"
)

// sqliteConfig returns the configuration of a fresh SQLite file inside a temporary directory.
func sqliteConfig(t *testing.T) config.Database {
	return config.Database{
		Driver:       "sqlite3",
		Path:         filepath.Join(t.TempDir(), "data", "contatos.db"),
		MaxOpenConns: 4,
	}
}
