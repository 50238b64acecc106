// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// InputPhrase and ResponsePhrase models.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/DBS-Coding/Back-End/internal/domain"
)

// InsertInputs inserts one InputPhrase row per text for tagID. Texts are
// stored verbatim. A nil/empty slice is a no-op.
func InsertInputs(ctx context.Context, db *gorm.DB, tagID uint, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	rows := make([]domain.InputPhrase, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, domain.InputPhrase{TagID: tagID, InputText: t})
	}
	return db.WithContext(ctx).Create(&rows).Error
}

// InsertResponses inserts one ResponsePhrase row per text for tagID.
func InsertResponses(ctx context.Context, db *gorm.DB, tagID uint, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	rows := make([]domain.ResponsePhrase, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, domain.ResponsePhrase{TagID: tagID, ResponseText: t})
	}
	return db.WithContext(ctx).Create(&rows).Error
}

// ListInputTexts returns the input texts stored for tagID, ordered by
// insertion (ID ascending).
func ListInputTexts(ctx context.Context, db *gorm.DB, tagID uint) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.InputPhrase{}).
		Where("tag_id = ?", tagID).
		Order("id ASC").
		Pluck("input_text", &out).Error
	return out, err
}

// ListResponseTexts returns the response texts stored for tagID, ordered by
// insertion (ID ascending).
func ListResponseTexts(ctx context.Context, db *gorm.DB, tagID uint) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.ResponsePhrase{}).
		Where("tag_id = ?", tagID).
		Order("id ASC").
		Pluck("response_text", &out).Error
	return out, err
}

// ListResponses returns the full response rows for tagID, ordered by ID.
func ListResponses(ctx context.Context, db *gorm.DB, tagID uint) ([]domain.ResponsePhrase, error) {
	var out []domain.ResponsePhrase
	err := db.WithContext(ctx).
		Where("tag_id = ?", tagID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// DeleteInputsByTag removes every InputPhrase owned by tagID.
func DeleteInputsByTag(ctx context.Context, db *gorm.DB, tagID uint) error {
	return db.WithContext(ctx).Delete(&domain.InputPhrase{}, "tag_id = ?", tagID).Error
}

// DeleteResponsesByTag removes every ResponsePhrase owned by tagID.
func DeleteResponsesByTag(ctx context.Context, db *gorm.DB, tagID uint) error {
	return db.WithContext(ctx).Delete(&domain.ResponsePhrase{}, "tag_id = ?", tagID).Error
}

// MatchInputs returns input phrases whose text contains userInput as a
// case-insensitive substring, ordered by ID ascending so "first match" is
// deterministic. LIKE metacharacters in userInput are escaped and match
// literally. Note the direction: the stored phrase is the haystack and the
// user input is the needle.
func MatchInputs(ctx context.Context, db *gorm.DB, userInput string) ([]domain.InputPhrase, error) {
	var out []domain.InputPhrase
	err := db.WithContext(ctx).
		Where("LOWER(input_text) LIKE ? ESCAPE '\\'", likePattern(userInput)).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
