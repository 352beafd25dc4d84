package models

// QueryRequest is the JSON body posted to the query endpoint
type QueryRequest struct {
	Message string `json:"message"`
}

// QueryResponse is the JSON body the backend answers with.
// Exactly one of Response or Error is normally set.
type QueryResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// QueryResult is a successfully parsed reply from the query endpoint
type QueryResult struct {
	Text       string
	StatusCode int
	RequestID  string
}
