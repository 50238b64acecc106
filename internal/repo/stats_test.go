package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DBS-Coding/Back-End/internal/domain"
)

func TestTagsStats_EmptyTable(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})

	count, maxUpdated, err := TagsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("TagsStats: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count 0, got %d", count)
	}
	if maxUpdated != nil {
		t.Fatalf("expected nil maxUpdatedAt, got %v", maxUpdated)
	}
}

func TestTagsStats_CountAndMaxUpdatedAt(t *testing.T) {
	db := newTestDB(t, &domain.Tag{})

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	newest := base.Add(2 * time.Hour)
	rows := []domain.Tag{
		{TagName: "a", UpdatedAt: base},
		{TagName: "b", UpdatedAt: newest},
		{TagName: "c", UpdatedAt: base.Add(time.Hour)},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	count, maxUpdated, err := TagsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("TagsStats: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
	if maxUpdated == nil || !maxUpdated.Equal(newest) {
		t.Fatalf("expected max %v, got %v", newest, maxUpdated)
	}
}
