// Package handlers defines the HTTP-layer error mapping used across all API
// endpoints.
//
// Service-level sentinel errors are translated here into the envelope's
// HTTP status and message. The taxonomy is fixed:
//
//   - 400 invalid payload or malformed id
//   - 401 missing/invalid bearer credential or wrong admin key
//   - 404 no tag for the given id/name
//   - 409 strict create on an existing tag name
//   - 500 unexpected store failure or timeout (generic message; detail is
//     logged server-side only)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DBS-Coding/Back-End/internal/http/middleware"
	"github.com/DBS-Coding/Back-End/internal/services"
)

// Messages reused across handlers. The wording is part of the public
// surface; clients display these verbatim.
const (
	msgInvalidBody   = "Invalid request payload"
	msgInvalidID     = "Tag id must be a positive integer"
	msgTagNotFound   = "Tag not found"
	msgTagExists     = "Tag already exists"
	msgUnauthorized  = "Missing or invalid credential"
	msgInternalError = "Internal server error"
)

// statusForError maps a service error to the envelope status and message.
// Unrecognized errors map to a generic 500; failError() logs the raw error
// server-side, it is never returned to the caller.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidPayload):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, services.ErrEmptyInput):
		return http.StatusBadRequest, "Input is required"
	case errors.Is(err, services.ErrTagNotFound):
		return http.StatusNotFound, msgTagNotFound
	case errors.Is(err, services.ErrTagExists):
		return http.StatusConflict, msgTagExists
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}

// failError translates a service error into the envelope. Unexpected store
// failures are logged with their cause and request target before the generic
// 500 goes out, and are attached to the Gin error list so the access log
// records them too.
func failError(c *gin.Context, err error) {
	status, msg := statusForError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		middleware.LoggerFrom(c).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("target", c.Request.URL.Path).
			Msg("operation failed")
	}
	fail(c, status, msg)
}
