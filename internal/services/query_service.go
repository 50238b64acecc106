// Package services – QueryService
//
// Read-side lookups over the knowledge base: every result couples a tag with
// its full input and response sets, fetched independently per tag the way
// the write side stores them.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/DBS-Coding/Back-End/internal/domain"
	"github.com/DBS-Coding/Back-End/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TagDetail couples a tag with its phrase sets. Phrase order within a set is
// insertion order; callers must not rely on it.
type TagDetail struct {
	Tag       domain.Tag
	Input     []string
	Responses []string
}

// QueryService answers read-only tag lookups.
type QueryService struct {
	// DB is the injected persistence gateway.
	DB *gorm.DB
	// Timeout bounds each store sequence; defaults to 5s when zero.
	Timeout time.Duration
}

// NewQueryService constructs a QueryService with the default store timeout.
func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{DB: db, Timeout: defaultStoreTimeout}
}

func (s *QueryService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.Timeout
	if d <= 0 {
		d = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

// ListAll returns every tag with its phrase sets, ordered by tag creation
// time ascending. An empty knowledge base yields an empty slice.
func (s *QueryService) ListAll(ctx context.Context) ([]TagDetail, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "ListAll")
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tags, err := repo.ListTags(ctx, s.DB)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.expand(ctx, tags)
}

// GetByID returns the tag identified by id with its phrase sets, or
// ErrTagNotFound.
func (s *QueryService) GetByID(ctx context.Context, id uint) (*TagDetail, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "GetByID",
		trace.WithAttributes(attribute.Int("tag.id", int(id))),
	)
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t, err := repo.GetTag(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, mapStoreErr(err)
	}
	return s.detail(ctx, *t)
}

// GetByTagName returns the tag with the exact tag_name, or ErrTagNotFound.
func (s *QueryService) GetByTagName(ctx context.Context, name string) (*TagDetail, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "GetByTagName",
		trace.WithAttributes(attribute.String("tag.name", name)),
	)
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t, err := repo.GetTagByName(ctx, s.DB, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, mapStoreErr(err)
	}
	return s.detail(ctx, *t)
}

// SearchByNama returns the tags whose owner label contains sub
// (case-insensitive substring). No match is an empty slice, not an error.
func (s *QueryService) SearchByNama(ctx context.Context, sub string) ([]TagDetail, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "SearchByNama",
		trace.WithAttributes(attribute.String("nama", sub)),
	)
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tags, err := repo.SearchTagsByNama(ctx, s.DB, sub)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s.expand(ctx, tags)
}

// Stats reports the tag count and the most recent tag update time (nil when
// the store is empty). Cache validators on the list endpoint derive from it.
func (s *QueryService) Stats(ctx context.Context) (int64, *time.Time, error) {
	tr := otel.Tracer("services/QueryService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	count, maxTS, err := repo.TagsStats(ctx, s.DB)
	if err != nil {
		return 0, nil, mapStoreErr(err)
	}
	return count, maxTS, nil
}

// expand fetches the phrase sets for each tag in order.
func (s *QueryService) expand(ctx context.Context, tags []domain.Tag) ([]TagDetail, error) {
	out := make([]TagDetail, 0, len(tags))
	for _, t := range tags {
		d, err := s.detail(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *QueryService) detail(ctx context.Context, t domain.Tag) (*TagDetail, error) {
	inputs, err := repo.ListInputTexts(ctx, s.DB, t.ID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	responses, err := repo.ListResponseTexts(ctx, s.DB, t.ID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return &TagDetail{Tag: t, Input: inputs, Responses: responses}, nil
}
