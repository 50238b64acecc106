package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenSQLite_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, table := range []string{"tags", "inputs", "responses"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}

	// The migrated schema must accept a full aggregate.
	tag, err := CreateTag(context.Background(), db, "smoke", nil)
	if err != nil {
		t.Fatalf("CreateTag after migrate: %v", err)
	}
	if err := InsertInputs(context.Background(), db, tag.ID, []string{"ping"}); err != nil {
		t.Fatalf("InsertInputs after migrate: %v", err)
	}
	if err := InsertResponses(context.Background(), db, tag.ID, []string{"pong"}); err != nil {
		t.Fatalf("InsertResponses after migrate: %v", err)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "deeper", "kb.db")
	if _, err := OpenSQLite(path); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
