package db

import (
	"sort"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := embeddedMigrations()
	if err != nil {
		t.Fatalf("embeddedMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations found")
	}
	names := make([]string, 0, len(migrations))
	for _, m := range migrations {
		if m.sql == "" {
			t.Fatalf("migration %s has no content", m.name)
		}
		if !strings.HasSuffix(m.name, ".sql") {
			t.Fatalf("unexpected migration file %s", m.name)
		}
		names = append(names, m.name)
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("migrations not in filename order: %v", names)
	}
}

func TestInitMigrationIsIdempotent(t *testing.T) {
	migrations, err := embeddedMigrations()
	if err != nil {
		t.Fatalf("embeddedMigrations: %v", err)
	}
	for _, m := range migrations {
		for _, stmt := range []string{"CREATE TABLE", "CREATE INDEX"} {
			if strings.Count(m.sql, stmt) != strings.Count(m.sql, stmt+" IF NOT EXISTS") {
				t.Fatalf("migration %s has a %s without IF NOT EXISTS", m.name, stmt)
			}
		}
	}
}
