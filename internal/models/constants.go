// Package models contains data types and constants for the agui chat client.
package models

// Endpoint and wire keys for the query API
const (
	DefaultEndpoint = "http://localhost:8000/query"

	// RequestField carries the raw user text in the request body
	RequestField = "message"
	// ReplyField carries the assistant reply in the response body
	ReplyField = "response"
	// ErrorField is set by the backend when it failed to produce a reply
	ErrorField = "error"
)

// User-facing texts
const (
	DefaultGreeting    = "Hi there! How can I help you today?"
	FallbackText       = "Something went wrong."
	TransportErrorText = "API request failed."
)

// TimestampLayout is the display format for message timestamps
const TimestampLayout = "15:04"

// DefaultHeaders returns the headers sent with every query
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
