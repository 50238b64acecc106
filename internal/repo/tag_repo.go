// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Tag model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a tag is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateTag(ctx, db, tagName, nama) -> *domain.Tag, error
//     Inserts a new Tag row with UTC timestamp.
//
//   - GetTag(ctx, db, id) -> *domain.Tag, error
//     Fetches a single tag by primary key, or ErrNotFound if missing.
//
//   - GetTagByName(ctx, db, tagName) -> *domain.Tag, error
//     Fetches a tag by exact tag_name, regardless of owner.
//
//   - GetTagByNameAndNama(ctx, db, tagName, nama) -> *domain.Tag, error
//     Fetches a tag by the (tag_name, nama) pair; a nil nama matches NULL.
//
//   - ListTags(ctx, db) -> []domain.Tag, error
//     Returns all tags ordered by creation time ascending (ID breaks ties).
//
//   - SearchTagsByNama(ctx, db, sub) -> []domain.Tag, error
//     Case-insensitive substring search over the nama column.
//
//   - UpdateTag(ctx, db, id, tagName, nama) -> error
//     Updates tag_name/nama in place; ErrNotFound when no row is affected.
//
//   - DeleteTag(ctx, db, id) -> error
//     Deletes the tag row only; phrase cleanup is composed by the service
//     inside the same transaction (cascade is not assumed).
//
// This repository is designed to be wrapped by higher-level services
// (see services.TagService / services.QueryService) which enforce the
// uniqueness policies, reconciliation modes, and transaction boundaries.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DBS-Coding/Back-End/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateTag inserts a new Tag row with the given name and optional owner
// label. CreatedAt is set to UTC. On success, it returns the persisted Tag
// with its generated ID. On failure, it returns a DB error (including
// unique-constraint violations on the (tag_name, nama) pair).
func CreateTag(ctx context.Context, db *gorm.DB, tagName string, nama *string) (*domain.Tag, error) {
	t := &domain.Tag{
		TagName:   tagName,
		Nama:      nama,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTag fetches a single tag by its primary key. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is
// returned.
func GetTag(ctx context.Context, db *gorm.DB, id uint) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagByName fetches a tag by exact tag_name, ignoring the owner label.
// When several owners share the name the lowest ID wins; the strict-create
// policy only cares whether any such row exists.
func GetTagByName(ctx context.Context, db *gorm.DB, tagName string) (*domain.Tag, error) {
	var t domain.Tag
	err := db.WithContext(ctx).
		Where("tag_name = ?", tagName).
		Order("id ASC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagByNameAndNama fetches a tag by the (tag_name, nama) pair. A nil nama
// matches rows whose nama column is NULL.
func GetTagByNameAndNama(ctx context.Context, db *gorm.DB, tagName string, nama *string) (*domain.Tag, error) {
	q := db.WithContext(ctx).Where("tag_name = ?", tagName)
	if nama == nil {
		q = q.Where("nama IS NULL")
	} else {
		q = q.Where("nama = ?", *nama)
	}
	var t domain.Tag
	if err := q.First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns all tags ordered by creation time ascending, with ID as a
// deterministic tie-breaker. It returns an empty slice when the table is
// empty. On DB error, it returns the error.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// SearchTagsByNama returns tags whose nama contains sub, case-insensitively.
// Rows with a NULL nama never match. An empty result is not an error.
func SearchTagsByNama(ctx context.Context, db *gorm.DB, sub string) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).
		Where("nama IS NOT NULL AND LOWER(nama) LIKE ? ESCAPE '\\'", likePattern(sub)).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// UpdateTag updates tag_name and nama of the tag identified by id. If no
// rows are affected (tag missing), it returns ErrNotFound. On DB error, the
// raw error is returned. A nil nama clears the owner label.
func UpdateTag(ctx context.Context, db *gorm.DB, id uint, tagName string, nama *string) error {
	res := db.WithContext(ctx).
		Model(&domain.Tag{}).
		Where("id = ?", id).
		Updates(map[string]any{"tag_name": tagName, "nama": nama})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTag removes the tag row identified by id. It returns ErrNotFound
// when the tag does not exist. Phrase rows are deleted by the caller within
// the same transaction; the store's FK cascade is not relied upon.
func DeleteTag(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Tag{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// likePattern lowercases s, escapes the LIKE metacharacters %, _ and \,
// and wraps it in wildcards so it matches as a literal substring.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return "%" + s + "%"
}
