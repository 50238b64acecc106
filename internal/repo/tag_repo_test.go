package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DBS-Coding/Back-End/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("tag_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Release the file handle before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func strptr(s string) *string { return &s }

func TestCreateTag_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	tag, err := CreateTag(context.Background(), db, "greeting", nil)
	if err == nil || tag != nil {
		t.Fatalf("expected error creating without table, got tag=%v err=%v", tag, err)
	}
}

func TestCreateTag_Success_PersistsAndSetsFields(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})

	start := time.Now().UTC().Add(-time.Minute)
	tag, err := CreateTag(context.Background(), db, "greeting", strptr("soekarno"))
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if tag.ID == 0 || tag.TagName != "greeting" || tag.Nama == nil || *tag.Nama != "soekarno" {
		t.Fatalf("unexpected Tag fields: %+v", tag)
	}
	if tag.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset: %v", tag.CreatedAt)
	}
	// round-trip
	var got domain.Tag
	if err := db.First(&got, tag.ID).Error; err != nil {
		t.Fatalf("load created tag: %v", err)
	}
	if got.TagName != "greeting" || got.Nama == nil || *got.Nama != "soekarno" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestCreateTag_CompositeUniqueViolation(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	if _, err := CreateTag(ctx, db, "greeting", strptr("soekarno")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// Same pair must fail.
	if _, err := CreateTag(ctx, db, "greeting", strptr("soekarno")); err == nil {
		t.Fatalf("expected unique violation for duplicate (tag_name, nama)")
	}
	// Same name under a different owner is fine.
	if _, err := CreateTag(ctx, db, "greeting", strptr("hatta")); err != nil {
		t.Fatalf("create under different owner: %v", err)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	_, err := GetTag(context.Background(), db, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTagByName_IgnoresOwnerAndPicksLowestID(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	first, err := CreateTag(ctx, db, "greeting", strptr("soekarno"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateTag(ctx, db, "greeting", strptr("hatta")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := GetTagByName(ctx, db, "greeting")
	if err != nil {
		t.Fatalf("GetTagByName: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected lowest-id row %d, got %d", first.ID, got.ID)
	}
}

func TestGetTagByNameAndNama_NilMatchesNullOnly(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	owned, err := CreateTag(ctx, db, "greeting", strptr("soekarno"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	anon, err := CreateTag(ctx, db, "greeting", nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := GetTagByNameAndNama(ctx, db, "greeting", nil)
	if err != nil {
		t.Fatalf("nil lookup: %v", err)
	}
	if got.ID != anon.ID {
		t.Fatalf("nil nama matched wrong row: got %d want %d", got.ID, anon.ID)
	}

	got, err = GetTagByNameAndNama(ctx, db, "greeting", strptr("soekarno"))
	if err != nil {
		t.Fatalf("owned lookup: %v", err)
	}
	if got.ID != owned.ID {
		t.Fatalf("owned lookup matched wrong row: got %d want %d", got.ID, owned.ID)
	}

	if _, err := GetTagByNameAndNama(ctx, db, "greeting", strptr("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}
}

func TestListTags_OrderByCreatedAtThenID(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rows := []domain.Tag{
		{TagName: "b", CreatedAt: base.Add(time.Hour)},
		{TagName: "a", CreatedAt: base},
		{TagName: "c", CreatedAt: base.Add(time.Hour)},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	got, err := ListTags(context.Background(), db)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(got))
	}
	if got[0].TagName != "a" || got[1].TagName != "b" || got[2].TagName != "c" {
		t.Fatalf("unexpected order: %s %s %s", got[0].TagName, got[1].TagName, got[2].TagName)
	}
}

func TestSearchTagsByNama_SubstringCaseInsensitive(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	seed := []struct {
		name string
		nama *string
	}{
		{"t1", strptr("Soekarno")},
		{"t2", strptr("hatta")},
		{"t3", nil},
	}
	for _, s := range seed {
		if _, err := CreateTag(ctx, db, s.name, s.nama); err != nil {
			t.Fatalf("seed %s: %v", s.name, err)
		}
	}

	got, err := SearchTagsByNama(ctx, db, "KARN")
	if err != nil {
		t.Fatalf("SearchTagsByNama: %v", err)
	}
	if len(got) != 1 || got[0].TagName != "t1" {
		t.Fatalf("expected only t1, got %+v", got)
	}
}

func TestSearchTagsByNama_EscapesLikeMetacharacters(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	if _, err := CreateTag(ctx, db, "t1", strptr("100% sure")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateTag(ctx, db, "t2", strptr("100 sure")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := SearchTagsByNama(ctx, db, "100%")
	if err != nil {
		t.Fatalf("SearchTagsByNama: %v", err)
	}
	if len(got) != 1 || got[0].TagName != "t1" {
		t.Fatalf("%% should match literally, got %+v", got)
	}
}

func TestUpdateTag_NotFoundAndSuccess(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	if err := UpdateTag(ctx, db, 999, "x", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}

	tag, err := CreateTag(ctx, db, "old", strptr("a"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateTag(ctx, db, tag.ID, "new", nil); err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}

	got, err := GetTag(ctx, db, tag.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.TagName != "new" || got.Nama != nil {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestDeleteTag_NotFoundAndSuccess(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})
	ctx := context.Background()

	if err := DeleteTag(ctx, db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}

	tag, err := CreateTag(ctx, db, "gone", nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := DeleteTag(ctx, db, tag.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if _, err := GetTag(ctx, db, tag.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("tag still present after delete: %v", err)
	}
}
