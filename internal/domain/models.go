// Package domain defines the persistence models for the chatbot knowledge
// base: tags, their trigger phrases (inputs), and their candidate responses.
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"time"
)

// Tag is a named category grouping trigger phrases with candidate responses.
//
// Fields:
//   - ID: generated integer primary key.
//   - TagName: non-empty category name (e.g. "greeting").
//   - Nama: optional owner/persona label used for filtering; nullable.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Uniqueness: at most one tag may exist per (tag_name, nama) pair. The
// strict-create path additionally rejects any reuse of tag_name alone;
// that policy lives in the service layer, not here.
type Tag struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	TagName   string    `json:"tag"        gorm:"type:varchar(255);not null;uniqueIndex:ux_tag_name_nama,priority:1"`
	Nama      *string   `json:"nama"       gorm:"type:varchar(255);uniqueIndex:ux_tag_name_nama,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// InputPhrase is a stored trigger string belonging to exactly one Tag. User
// text is matched against input phrases by case-insensitive substring; the
// same text may appear under multiple tags (first match by ID wins).
//
// Fields:
//   - ID: generated integer primary key; also the deterministic match order.
//   - TagID: foreign key to the owning tag (indexed).
//   - InputText: non-empty trigger text.
//   - Tag: FK association, ensures cascade delete/update.
type InputPhrase struct {
	ID        uint   `json:"id"         gorm:"primaryKey;autoIncrement"`
	TagID     uint   `json:"tag_id"     gorm:"not null;index:idx_inputs_tag"`
	InputText string `json:"input_text" gorm:"type:text;not null"`

	// Tag is the owning category. Phrases are cascade-deleted when their
	// tag is removed.
	Tag Tag `json:"-" gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for InputPhrase.
func (InputPhrase) TableName() string { return "inputs" }

// ResponsePhrase is a stored reply string belonging to exactly one Tag. One
// response is drawn uniformly at random per successful match.
type ResponsePhrase struct {
	ID           uint   `json:"id"            gorm:"primaryKey;autoIncrement"`
	TagID        uint   `json:"tag_id"        gorm:"not null;index:idx_responses_tag"`
	ResponseText string `json:"response_text" gorm:"type:text;not null"`

	Tag Tag `json:"-" gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ResponsePhrase.
func (ResponsePhrase) TableName() string { return "responses" }
