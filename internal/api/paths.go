// Package api provides the HTTP client for the chat query endpoint.
package api

import "github.com/diogo/agui/internal/models"

// GJSON paths for extracting values from query responses
const (
	PathReply = models.ReplyField
	PathError = models.ErrorField
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20
