// Package services – MatchService
//
// This file implements the matcher: free-text user input is checked against
// the stored trigger phrases and answered with one of the matched tag's
// responses, drawn uniformly at random. A miss is not an error; two fixed
// fallback replies cover "no phrase matched" and "matched tag has no
// responses".
//
// Matching direction: a stored phrase matches when its text contains the
// user input as a case-insensitive substring (LOWER(input_text) LIKE
// '%' || LOWER(input) || '%'). The first match is the phrase with the
// lowest ID, so results are reproducible. Matching never mutates the store.
package services

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DBS-Coding/Back-End/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Fallback replies, returned with success status (never as errors).
const (
	// NoMatchReply is returned when no stored phrase matches the input.
	NoMatchReply = "Maaf, saya tidak mengerti pertanyaan Anda."
	// NoAnswerReply is returned when the matched tag has no responses.
	NoAnswerReply = "Maaf, saya tidak memiliki jawaban untuk pertanyaan ini."
)

// MatchService resolves user input to a stored response.
type MatchService struct {
	// DB is the injected persistence gateway.
	DB *gorm.DB
	// Timeout bounds each store sequence; defaults to 5s when zero.
	Timeout time.Duration

	// pick selects an index in [0,n); overridable in tests. Nil means
	// uniform random.
	pick func(n int) int
}

// NewMatchService constructs a MatchService with the default store timeout.
func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db, Timeout: defaultStoreTimeout}
}

func (s *MatchService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	d := s.Timeout
	if d <= 0 {
		d = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

func (s *MatchService) pickIndex(n int) int {
	if s.pick != nil {
		return s.pick(n)
	}
	return rand.IntN(n)
}

// Match finds the first input phrase containing input (case-insensitive),
// resolves its tag, and returns one of that tag's responses uniformly at
// random. Empty input fails with ErrEmptyInput; a miss returns NoMatchReply
// and a response-less tag returns NoAnswerReply, both without error.
func (s *MatchService) Match(ctx context.Context, input string) (string, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "Match",
		trace.WithAttributes(attribute.String("input", input)),
	)
	defer span.End()

	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	matches, err := repo.MatchInputs(ctx, s.DB, input)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if len(matches) == 0 {
		return NoMatchReply, nil
	}

	// First match in deterministic (insertion) order.
	tagID := matches[0].TagID

	responses, err := repo.ListResponseTexts(ctx, s.DB, tagID)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if len(responses) == 0 {
		return NoAnswerReply, nil
	}
	return responses[s.pickIndex(len(responses))], nil
}
