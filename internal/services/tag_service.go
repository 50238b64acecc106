// Package services – TagService
//
// This file implements TagService, the application-level component that owns
// the tag lifecycle and phrase reconciliation. It validates payloads before
// any store access, enforces the two tag-uniqueness policies as separate
// named operations (resolve-or-create by (tag_name, nama) vs strict create
// by tag_name alone), and wraps every multi-step write in a single store
// transaction so readers never observe a tag without phrases and concurrent
// replaces cannot interleave their delete/insert phases.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// tag identifiers where applicable.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DBS-Coding/Back-End/internal/domain"
	"github.com/DBS-Coding/Back-End/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// defaultStoreTimeout bounds a single store sequence when no timeout is
// configured.
const defaultStoreTimeout = 5 * time.Second

// TagRepo defines the repository contract required by TagService.
// Implementations are responsible for persistence of the tag aggregate.
type TagRepo interface {
	// CreateTag inserts a new tag row.
	CreateTag(ctx context.Context, db *gorm.DB, tagName string, nama *string) (*domain.Tag, error)

	// GetTag fetches a tag by primary key.
	GetTag(ctx context.Context, db *gorm.DB, id uint) (*domain.Tag, error)

	// GetTagByName fetches a tag by exact tag_name, ignoring the owner label.
	GetTagByName(ctx context.Context, db *gorm.DB, tagName string) (*domain.Tag, error)

	// GetTagByNameAndNama fetches a tag by the (tag_name, nama) pair.
	GetTagByNameAndNama(ctx context.Context, db *gorm.DB, tagName string, nama *string) (*domain.Tag, error)

	// UpdateTag updates tag_name/nama in place.
	UpdateTag(ctx context.Context, db *gorm.DB, id uint, tagName string, nama *string) error

	// DeleteTag removes the tag row only.
	DeleteTag(ctx context.Context, db *gorm.DB, id uint) error
}

// TagPayload is the validated input for create/merge/replace operations.
type TagPayload struct {
	// Nama optionally labels the tag with an owner/persona; nil clears it.
	Nama *string
	// Tag is the category name; required, non-empty.
	Tag string
	// Input are the trigger phrases; at least one non-empty string.
	Input []string
	// Responses are the candidate replies; at least one non-empty string.
	Responses []string
}

// Validate checks the payload shape. It must pass before the store is
// touched. Stored values are kept verbatim; only emptiness is checked.
func (p TagPayload) Validate() error {
	if strings.TrimSpace(p.Tag) == "" {
		return ErrInvalidPayload
	}
	if len(p.Input) == 0 || len(p.Responses) == 0 {
		return ErrInvalidPayload
	}
	for _, s := range p.Input {
		if strings.TrimSpace(s) == "" {
			return ErrInvalidPayload
		}
	}
	for _, s := range p.Responses {
		if strings.TrimSpace(s) == "" {
			return ErrInvalidPayload
		}
	}
	return nil
}

// MergeResult reports the outcome of an incremental merge.
type MergeResult struct {
	Tag *domain.Tag
	// Created is true when the merge had to create the tag.
	Created bool
	// AddedInputs / AddedResponses count the phrases actually inserted
	// (items already present are skipped, never duplicated).
	AddedInputs    int
	AddedResponses int
}

// TagService provides tag lifecycle operations: resolve-or-create with
// incremental merge, strict create, full replace, delete, and bulk delete.
type TagService struct {
	// DB is the injected persistence gateway.
	DB *gorm.DB
	// Repo is the tag repository used by this service.
	Repo TagRepo
	// Timeout bounds each store sequence; defaults to 5s when zero.
	Timeout time.Duration
}

// NewTagService constructs a TagService with the default store timeout.
func NewTagService(db *gorm.DB, r TagRepo) *TagService {
	return &TagService{DB: db, Repo: r, Timeout: defaultStoreTimeout}
}

// opCtx derives a deadline-bounded context for one store sequence.
func (s *TagService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.Timeout
	if d <= 0 {
		d = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

// mapStoreErr converts a context deadline hit into ErrStoreTimeout so
// callers can distinguish timeouts from other store failures. Writes that
// may have partially applied are never retried.
func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreTimeout
	}
	return err
}

// ResolveOrCreate looks a tag up by the (tag_name, nama) pair and creates it
// when absent. It never fails because the tag already exists; the second
// return value reports whether a row was created.
func (s *TagService) ResolveOrCreate(ctx context.Context, tagName string, nama *string) (*domain.Tag, bool, error) {
	tr := otel.Tracer("services/TagService")
	ctx, span := tr.Start(ctx, "ResolveOrCreate",
		trace.WithAttributes(attribute.String("tag.name", tagName)),
	)
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t, err := s.Repo.GetTagByNameAndNama(ctx, s.DB, tagName, nama)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, mapStoreErr(err)
	}
	t, err = s.Repo.CreateTag(ctx, s.DB, tagName, nama)
	if err != nil {
		return nil, false, mapStoreErr(err)
	}
	return t, true, nil
}

// Merge resolves (or creates) the tag for the payload and applies the
// incremental reconciliation policy: phrases not already stored (by exact
// string equality) are inserted, existing phrases are never removed. The
// whole sequence runs in one transaction.
func (s *TagService) Merge(ctx context.Context, p TagPayload) (*MergeResult, error) {
	tr := otel.Tracer("services/TagService")
	ctx, span := tr.Start(ctx, "Merge",
		trace.WithAttributes(attribute.String("tag.name", p.Tag)),
	)
	defer span.End()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var res MergeResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.Repo.GetTagByNameAndNama(ctx, tx, p.Tag, p.Nama)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			t, err = s.Repo.CreateTag(ctx, tx, p.Tag, p.Nama)
			res.Created = true
		}
		if err != nil {
			return err
		}
		res.Tag = t

		haveIn, err := repo.ListInputTexts(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		haveResp, err := repo.ListResponseTexts(ctx, tx, t.ID)
		if err != nil {
			return err
		}

		newIn := diffNew(p.Input, haveIn)
		newResp := diffNew(p.Responses, haveResp)

		if err := repo.InsertInputs(ctx, tx, t.ID, newIn); err != nil {
			return err
		}
		if err := repo.InsertResponses(ctx, tx, t.ID, newResp); err != nil {
			return err
		}
		res.AddedInputs = len(newIn)
		res.AddedResponses = len(newResp)
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &res, nil
}

// CreateStrict creates a tag under the strict uniqueness policy: any
// existing tag with the same tag_name (regardless of owner) makes the call
// fail with ErrTagExists, leaving stored phrases untouched. On success the
// tag and its full phrase sets are inserted in one transaction.
func (s *TagService) CreateStrict(ctx context.Context, p TagPayload) (*domain.Tag, error) {
	tr := otel.Tracer("services/TagService")
	ctx, span := tr.Start(ctx, "CreateStrict",
		trace.WithAttributes(attribute.String("tag.name", p.Tag)),
	)
	defer span.End()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var created *domain.Tag
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Repo.GetTagByName(ctx, tx, p.Tag); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		t, err := s.Repo.CreateTag(ctx, tx, p.Tag, p.Nama)
		if err != nil {
			return err
		}
		if err := repo.InsertInputs(ctx, tx, t.ID, p.Input); err != nil {
			return err
		}
		if err := repo.InsertResponses(ctx, tx, t.ID, p.Responses); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTagExists) {
			return nil, ErrTagExists
		}
		return nil, mapStoreErr(err)
	}
	return created, nil
}

// Replace updates the tag identified by id and applies the full-replace
// reconciliation policy: all stored phrases are deleted and the payload
// sets are inserted verbatim. Deletes complete before inserts begin, and
// both phases share one transaction so no reader sees the empty window.
func (s *TagService) Replace(ctx context.Context, id uint, p TagPayload) (*domain.Tag, error) {
	tr := otel.Tracer("services/TagService")
	ctx, span := tr.Start(ctx, "Replace",
		trace.WithAttributes(attribute.Int("tag.id", int(id))),
	)
	defer span.End()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var updated *domain.Tag
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Repo.GetTag(ctx, tx, id); err != nil {
			return err
		}
		if err := s.Repo.UpdateTag(ctx, tx, id, p.Tag, p.Nama); err != nil {
			return err
		}
		if err := repo.DeleteInputsByTag(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.DeleteResponsesByTag(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.InsertInputs(ctx, tx, id, p.Input); err != nil {
			return err
		}
		if err := repo.InsertResponses(ctx, tx, id, p.Responses); err != nil {
			return err
		}
		t, err := s.Repo.GetTag(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, mapStoreErr(err)
	}
	return updated, nil
}

// Delete removes the tag identified by id together with all its phrases in
// one transaction, so no orphaned phrase rows remain.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	tr := otel.Tracer("services/TagService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int("tag.id", int(id))),
	)
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Repo.GetTag(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.DeleteInputsByTag(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.DeleteResponsesByTag(ctx, tx, id); err != nil {
			return err
		}
		return s.Repo.DeleteTag(ctx, tx, id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTagNotFound
	}
	return mapStoreErr(err)
}

// DeleteAll removes every tag and all phrase rows in a single transaction
// and returns the number of tags removed. Success is reported only after
// the deletions are committed.
func (s *TagService) DeleteAll(ctx context.Context) (int64, error) {
	tr := otel.Tracer("services/TagService")
	ctx, span := tr.Start(ctx, "DeleteAll")
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var removed int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Tag{}).Count(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.InputPhrase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.ResponsePhrase{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&domain.Tag{}).Error
	})
	if err != nil {
		return 0, mapStoreErr(err)
	}
	return removed, nil
}

// diffNew returns the items of want that are not present in have (exact
// string equality), preserving order and dropping duplicates within want.
func diffNew(want, have []string) []string {
	seen := make(map[string]struct{}, len(have)+len(want))
	for _, h := range have {
		seen[h] = struct{}{}
	}
	out := make([]string, 0, len(want))
	for _, w := range want {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
