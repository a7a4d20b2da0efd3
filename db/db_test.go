package db

import (
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil || first != 1 {
		t.Fatalf("first version = %d, %v", first, err)
	}

	for _, name := range []string{"migrations/000001_init.up.sql", "migrations/000001_init.down.sql"} {
		b, err := fs.ReadFile(migrations, name)
		if err != nil || len(b) == 0 {
			t.Fatalf("%s: %v", name, err)
		}
	}
}
