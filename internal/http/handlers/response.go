// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response envelope used across all
// endpoints. Every response, success or failure, carries the same shape,
// with the HTTP status code mirrored in the body. Clients depend on this
// exact envelope, so it must not change:
//
//	HTTP/1.1 201 Created
//	{
//	  "code": 201,
//	  "status": "success",
//	  "message": "Chatbot tag created/updated successfully",
//	  "data": { "id": 3, "tag": "greeting", ... }
//	}
//
//	HTTP/1.1 404 Not Found
//	{
//	  "code": 404,
//	  "status": "error",
//	  "message": "Tag not found"
//	}
//
// Conventions:
//   - success() and fail() centralize serialization so every handler emits
//     the exact same envelope.
//   - failError() logs 5xx causes with request context before the generic
//     message goes out, so store-level detail never leaks to the caller.
package handlers

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the standard response body returned by all endpoints.
//
// Fields:
//   - Code: HTTP status code, duplicated in the body.
//   - Status: "success" or "error".
//   - Message: human-readable outcome description.
//   - Data: payload; omitted on errors and on data-less successes.
type Envelope struct {
	Code    int    `json:"code" example:"200"`
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Chatbot data retrieved"`
	Data    any    `json:"data,omitempty"`
}

// success writes a success envelope with the given HTTP status and payload.
func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Code:    status,
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// fail aborts the request with an error envelope. Handlers that carry an
// underlying error go through failError, which logs the cause first.
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Code:    status,
		Status:  "error",
		Message: message,
	})
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup, middleware fallbacks) call Fail to
// return consistent envelopes without depending on unexported helpers.
func Fail(c *gin.Context, status int, message string) { fail(c, status, message) }
