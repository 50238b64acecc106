// Chatbot HTTP handlers.
//
// This file exposes the REST endpoints for the knowledge base:
//   - POST   /chatbot/tags          (resolve-or-create + incremental merge)
//   - POST   /chatbot/create        (strict create, 409 on name collision)
//   - PUT    /chatbot/update/{id}   (update + full phrase replace)
//   - GET    /chatbot/tags          (list all, ETag support)
//   - GET    /chatbot/tags/{id}     (by id; exact name lookup as fallback)
//   - GET    /chatbot/tags/nama/{n} (owner substring search)
//   - DELETE /chatbot/tags/{id}     (delete with cascade)
//   - POST   /chatbot/process       (match user input to a response)
//   - DELETE /chatbot/all/{key}     (bulk delete, shared-secret gated)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into the response envelope.
package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DBS-Coding/Back-End/internal/domain"
	"github.com/DBS-Coding/Back-End/internal/http/middleware"
	"github.com/DBS-Coding/Back-End/internal/services"
)

//
// Service contracts (context-aware)
//

// TagService defines the write-side tag operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TagService interface {
	// Merge resolves-or-creates the tag and inserts only missing phrases.
	Merge(ctx context.Context, p services.TagPayload) (*services.MergeResult, error)
	// CreateStrict creates the tag, failing when the name is taken.
	CreateStrict(ctx context.Context, p services.TagPayload) (*domain.Tag, error)
	// Replace updates the tag and swaps its full phrase sets.
	Replace(ctx context.Context, id uint, p services.TagPayload) (*domain.Tag, error)
	// Delete removes a tag and its phrases.
	Delete(ctx context.Context, id uint) error
	// DeleteAll wipes the knowledge base and reports how many tags went.
	DeleteAll(ctx context.Context) (int64, error)
}

// QueryService defines the read-side lookups consumed by HTTP handlers.
type QueryService interface {
	ListAll(ctx context.Context) ([]services.TagDetail, error)
	GetByID(ctx context.Context, id uint) (*services.TagDetail, error)
	GetByTagName(ctx context.Context, name string) (*services.TagDetail, error)
	SearchByNama(ctx context.Context, sub string) ([]services.TagDetail, error)
	// Stats reports the tag count and most recent update time; the list
	// endpoint derives its cache validator (ETag) from it.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// MatchService resolves free-text input to a stored response.
type MatchService interface {
	Match(ctx context.Context, input string) (string, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the chatbot knowledge base.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	tagSvc   TagService
	querySvc QueryService
	matchSvc MatchService

	// adminKey gates DELETE /chatbot/all/{key}; empty disables the route.
	adminKey string
}

// New constructs a Handlers instance bound to the given services.
func New(tagSvc TagService, querySvc QueryService, matchSvc MatchService, adminKey string) *Handlers {
	return &Handlers{tagSvc: tagSvc, querySvc: querySvc, matchSvc: matchSvc, adminKey: adminKey}
}

//
// DTOs
//

// ChatbotRequest is the JSON payload for the create/merge/replace endpoints.
type ChatbotRequest struct {
	// Nama optionally labels the tag with an owner/persona name.
	Nama string `json:"nama" example:"soekarno"`
	// Tag is the category name.
	Tag string `json:"tag" binding:"required" example:"greeting"`
	// Input are the trigger phrases (each non-empty).
	Input []string `json:"input" binding:"required,min=1,dive,required" example:"hi,hello"`
	// Responses are the candidate replies (each non-empty).
	Responses []string `json:"responses" binding:"required,min=1,dive,required" example:"Hello!,Hi there!"`
}

// payload converts the request into the service-layer payload. An empty
// nama becomes NULL, matching the stored shape.
func (r ChatbotRequest) payload() services.TagPayload {
	var nama *string
	if r.Nama != "" {
		n := r.Nama
		nama = &n
	}
	return services.TagPayload{
		Nama:      nama,
		Tag:       r.Tag,
		Input:     r.Input,
		Responses: r.Responses,
	}
}

// ProcessRequest is the JSON payload for the matcher endpoint.
type ProcessRequest struct {
	// Input is the free-text user utterance.
	Input string `json:"input" binding:"required" example:"hello there"`
}

// TagData is the wire representation of a tag with its phrase sets.
type TagData struct {
	ID        uint     `json:"id"`
	Tag       string   `json:"tag"`
	Nama      *string  `json:"nama"`
	Input     []string `json:"input"`
	Responses []string `json:"responses"`
	CreatedAt string   `json:"created_at"`
}

// MergeData reports a merge outcome on the wire.
type MergeData struct {
	ID             uint    `json:"id"`
	Tag            string  `json:"tag"`
	Nama           *string `json:"nama"`
	AddedInputs    int     `json:"added_inputs"`
	AddedResponses int     `json:"added_responses"`
}

// tagData flattens a service TagDetail into its wire shape.
func tagData(d services.TagDetail) TagData {
	return TagData{
		ID:        d.Tag.ID,
		Tag:       d.Tag.TagName,
		Nama:      d.Tag.Nama,
		Input:     d.Input,
		Responses: d.Responses,
		CreatedAt: d.Tag.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func tagDataList(ds []services.TagDetail) []TagData {
	out := make([]TagData, 0, len(ds))
	for _, d := range ds {
		out = append(out, tagData(d))
	}
	return out
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

//
// Handlers
//

// MergeTag godoc
// @ID          mergeTag
// @Summary     Create or extend a chatbot tag
// @Description Resolves the tag by (tag, nama), creating it when absent, and inserts only phrases not already stored.
// @Tags        Chatbot
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ChatbotRequest  true  "Tag payload"
// @Success     201  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.Envelope "Invalid payload"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/tags [post]
func (h *Handlers) MergeTag(c *gin.Context) {
	var req ChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.tagSvc.Merge(c.Request.Context(), req.payload())
	if err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusCreated, "Chatbot tag created/updated successfully", MergeData{
		ID:             res.Tag.ID,
		Tag:            res.Tag.TagName,
		Nama:           res.Tag.Nama,
		AddedInputs:    res.AddedInputs,
		AddedResponses: res.AddedResponses,
	})
}

// CreateTag godoc
// @ID          createTag
// @Summary     Create a chatbot tag (strict)
// @Description Creates a tag and its phrase sets; fails with 409 when the tag name already exists under any owner.
// @Tags        Chatbot
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ChatbotRequest  true  "Tag payload"
// @Success     201  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.Envelope "Invalid payload"
// @Failure     409  {object}  handlers.Envelope "Tag already exists"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/create [post]
func (h *Handlers) CreateTag(c *gin.Context) {
	var req ChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := h.tagSvc.CreateStrict(c.Request.Context(), req.payload())
	if err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusCreated, "Chatbot tag created successfully", gin.H{
		"id":   t.ID,
		"tag":  t.TagName,
		"nama": t.Nama,
	})
}

// UpdateTag godoc
// @ID          updateTag
// @Summary     Update a chatbot tag (full replace)
// @Description Updates tag name/owner and replaces both phrase sets with the payload verbatim.
// @Tags        Chatbot
// @Accept      json
// @Produce     json
// @Param       id    path  int                      true  "Tag id"
// @Param       body  body  handlers.ChatbotRequest  true  "Tag payload"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.Envelope "Invalid payload or id"
// @Failure     404  {object}  handlers.Envelope "Tag not found"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/update/{id} [put]
func (h *Handlers) UpdateTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	var req ChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	t, err := h.tagSvc.Replace(c.Request.Context(), id, req.payload())
	if err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusOK, "Chatbot tag updated successfully", gin.H{
		"id":   t.ID,
		"tag":  t.TagName,
		"nama": t.Nama,
	})
}

// ListTags godoc
// @ID          listTags
// @Summary     List all chatbot tags
// @Description Returns every tag with its phrase sets, ordered by creation time. Supports weak ETag via If-None-Match.
// @Tags        Chatbot
// @Produce     json
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {object}  handlers.Envelope
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/tags [get]
func (h *Handlers) ListTags(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort; a stats failure falls through to the
	// full listing).
	if count, maxTS, err := h.querySvc.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"tags:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.querySvc.ListAll(ctx)
	if err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusOK, "Chatbot data retrieved", tagDataList(items))
}

// GetTag godoc
// @ID          getTag
// @Summary     Get one chatbot tag
// @Description Looks the tag up by numeric id; a non-numeric path segment is treated as an exact tag name.
// @Tags        Chatbot
// @Produce     json
// @Param       id  path  string  true  "Tag id (or exact tag name)"
// @Success     200  {object}  handlers.Envelope
// @Failure     404  {object}  handlers.Envelope "Tag not found"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/tags/{id} [get]
func (h *Handlers) GetTag(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		d   *services.TagDetail
		err error
	)
	if id, ok := pathID(c); ok {
		d, err = h.querySvc.GetByID(ctx, id)
	} else {
		// Legacy addressing: the original API keyed this route by tag name.
		d, err = h.querySvc.GetByTagName(ctx, c.Param("id"))
	}
	if err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusOK, "Chatbot tag retrieved", tagData(*d))
}

// SearchByNama godoc
// @ID          searchByNama
// @Summary     Search chatbot tags by owner name
// @Description Case-insensitive substring search over the nama label. No match yields an empty list, not an error.
// @Tags        Chatbot
// @Produce     json
// @Param       nama  path  string  true  "Owner substring"
// @Success     200  {object}  handlers.Envelope
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/tags/nama/{nama} [get]
func (h *Handlers) SearchByNama(c *gin.Context) {
	// The gin route is /chatbot/tags/:id/:nama because a static "nama"
	// segment cannot coexist with the :id wildcard; reject anything else.
	if c.Param("id") != "nama" {
		fail(c, http.StatusNotFound, "Route not found")
		return
	}

	items, err := h.querySvc.SearchByNama(c.Request.Context(), c.Param("nama"))
	if err != nil {
		failError(c, err)
		return
	}
	msg := "Chatbots retrieved by name"
	if len(items) == 0 {
		msg = "No chatbot found with the given name"
	}
	success(c, http.StatusOK, msg, tagDataList(items))
}

// DeleteTag godoc
// @ID          deleteTag
// @Summary     Delete a chatbot tag
// @Description Deletes the tag and every phrase referencing it.
// @Tags        Chatbot
// @Produce     json
// @Param       id  path  int  true  "Tag id"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.Envelope "Invalid id"
// @Failure     404  {object}  handlers.Envelope "Tag not found"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/tags/{id} [delete]
func (h *Handlers) DeleteTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		fail(c, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := h.tagSvc.Delete(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusOK, "Chatbot tag deleted successfully", nil)
}

// Process godoc
// @ID          processInput
// @Summary     Match user input to a response
// @Description Finds the first stored phrase containing the input (case-insensitive) and answers with one of its tag's responses at random. Misses answer with a fixed fallback, not an error.
// @Tags        Chatbot
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ProcessRequest  true  "User input"
// @Success     200  {object}  handlers.Envelope
// @Failure     400  {object}  handlers.Envelope "Missing input"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/process [post]
func (h *Handlers) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Input is required")
		return
	}

	reply, err := h.matchSvc.Match(c.Request.Context(), req.Input)
	if err != nil {
		failError(c, err)
		return
	}
	msg, outcome := "Response found", "matched"
	switch reply {
	case services.NoMatchReply:
		msg, outcome = "No matching tag found", "no_match"
	case services.NoAnswerReply:
		msg, outcome = "No responses found for tag", "no_responses"
	}
	middleware.ObserveMatch(outcome)
	success(c, http.StatusOK, msg, gin.H{"response": reply})
}

// DeleteAll godoc
// @ID          deleteAllTags
// @Summary     Delete the whole knowledge base
// @Description Removes every tag and phrase. Gated by a shared secret carried in the path; success is reported only after all deletions are committed.
// @Tags        Chatbot
// @Produce     json
// @Param       key  path  string  true  "Admin key"
// @Success     200  {object}  handlers.Envelope
// @Failure     401  {object}  handlers.Envelope "Wrong or missing key"
// @Failure     500  {object}  handlers.Envelope "Internal error"
// @Router      /chatbot/all/{key} [delete]
func (h *Handlers) DeleteAll(c *gin.Context) {
	key := c.Param("key")
	if h.adminKey == "" ||
		subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) != 1 {
		fail(c, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	n, err := h.tagSvc.DeleteAll(c.Request.Context())
	if err != nil {
		failError(c, err)
		return
	}
	success(c, http.StatusOK, "All chatbot tags deleted successfully", gin.H{"deleted": n})
}
