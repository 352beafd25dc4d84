package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/diogo/agui/internal/errors"
)

func newTestClient(t *testing.T, mock *MockHttpClient) *Client {
	t.Helper()
	client, err := NewClient(WithHTTPClient(mock), WithEndpoint("http://localhost:8000/query"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestQuery_Success(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"response":"hi!"}`), 200)
	client := newTestClient(t, mock)

	result, err := client.Query(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Text != "hi!" {
		t.Errorf("Text = %q, want %q", result.Text, "hi!")
	}
	if result.StatusCode != 200 {
		t.Errorf("StatusCode = %d", result.StatusCode)
	}
	if result.RequestID == "" {
		t.Error("RequestID should be set")
	}
}

func TestQuery_RequestShape(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"response":"ok"}`), 200)
	client := newTestClient(t, mock)

	raw := "  hello world  "
	if _, err := client.Query(context.Background(), raw); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(mock.Requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(mock.Requests))
	}
	req := mock.Requests[0]
	if req.Method != "POST" {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.String() != "http://localhost:8000/query" {
		t.Errorf("URL = %s", req.URL.String())
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}
	if req.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	var body map[string]string
	if err := json.Unmarshal(mock.Bodies[0], &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if len(body) != 1 || body["message"] != raw {
		t.Errorf("request body = %v, want only message=%q (raw, untrimmed)", body, raw)
	}
}

func TestQuery_ResponseVariants(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		status         int
		wantText       string
		wantParse      bool
		wantUnexpected bool
		wantBackendErr string
	}{
		{name: "plain reply", body: `{"response":"X"}`, status: 200, wantText: "X"},
		{name: "reply with whitespace", body: "\n  {\"response\":\"hi\"}  \n", status: 200, wantText: "hi"},
		{name: "reply on error status", body: `{"response":"still shown"}`, status: 500, wantText: "still shown"},
		{name: "numeric reply", body: `{"response":42}`, status: 200, wantText: "42"},
		{name: "true reply", body: `{"response":true}`, status: 200, wantText: "true"},
		{name: "object reply", body: `{"response":{"a":1}}`, status: 200, wantText: `{"a":1}`},
		{name: "missing field", body: `{"other":"x"}`, status: 200, wantUnexpected: true},
		{name: "empty string", body: `{"response":""}`, status: 200, wantUnexpected: true},
		{name: "null field", body: `{"response":null}`, status: 200, wantUnexpected: true},
		{name: "false field", body: `{"response":false}`, status: 200, wantUnexpected: true},
		{name: "zero field", body: `{"response":0}`, status: 200, wantUnexpected: true},
		{name: "array body", body: `["response"]`, status: 200, wantUnexpected: true},
		{name: "backend error", body: `{"error":"model overloaded"}`, status: 200, wantUnexpected: true, wantBackendErr: "model overloaded"},
		{name: "html body", body: `<html>502 Bad Gateway</html>`, status: 502, wantParse: true},
		{name: "empty body", body: ``, status: 204, wantParse: true},
		{name: "truncated json", body: `{"response":"hi`, status: 200, wantParse: true},
		{name: "repeated key keeps last", body: `{"response":"a","response":"b"}`, status: 200, wantText: "b"},
		{name: "repeated key last empty", body: `{"response":"a","response":""}`, status: 200, wantUnexpected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, NewMockHttpClient([]byte(tt.body), tt.status))

			result, err := client.Query(context.Background(), "q")

			switch {
			case tt.wantParse:
				if !apierrors.IsParseError(err) {
					t.Fatalf("expected parse error, got %v", err)
				}
			case tt.wantUnexpected:
				if !apierrors.IsUnexpectedResponse(err) {
					t.Fatalf("expected unexpected response error, got %v", err)
				}
				if got := apierrors.GetBackendError(err); got != tt.wantBackendErr {
					t.Errorf("backend error = %q, want %q", got, tt.wantBackendErr)
				}
				if got := apierrors.GetHTTPStatus(err); got != tt.status {
					t.Errorf("status = %d, want %d", got, tt.status)
				}
			default:
				if err != nil {
					t.Fatalf("Query() error = %v", err)
				}
				if result.Text != tt.wantText {
					t.Errorf("Text = %q, want %q", result.Text, tt.wantText)
				}
			}
		})
	}
}

func TestQuery_TransportFailure(t *testing.T) {
	mock := NewMockHttpClientWithError(errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"))
	client := newTestClient(t, mock)

	_, err := client.Query(context.Background(), "hello")
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if apierrors.IsTimeoutError(err) {
		t.Error("connection refused should not be a timeout")
	}
	if apierrors.GetEndpoint(err) != "http://localhost:8000/query" {
		t.Errorf("endpoint = %q", apierrors.GetEndpoint(err))
	}
}

func TestQuery_Timeout(t *testing.T) {
	mock := NewMockHttpClientWithError(context.DeadlineExceeded)
	client := newTestClient(t, mock)

	_, err := client.Query(context.Background(), "hello")
	if !apierrors.IsTimeoutError(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !apierrors.IsNetworkError(err) {
		t.Error("timeouts are transport failures")
	}
}

func TestQuery_BodyReadFailure(t *testing.T) {
	mock := NewMockHttpClient(nil, 200)
	mock.Response.Body.(*MockResponseBody).err = errors.New("connection reset")
	client := newTestClient(t, mock)

	_, err := client.Query(context.Background(), "hello")
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestQuery_ClosesBody(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"response":"x"}`), 200)
	client := newTestClient(t, mock)

	if _, err := client.Query(context.Background(), "hello"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !mock.Response.Body.(*MockResponseBody).closed {
		t.Error("response body was not closed")
	}
}

func TestQuery_EmptyPrompt(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"response":"x"}`), 200)
	client := newTestClient(t, mock)

	_, err := client.Query(context.Background(), "")
	if !errors.Is(err, apierrors.ErrEmptyPrompt) {
		t.Errorf("expected ErrEmptyPrompt, got %v", err)
	}
	if len(mock.Requests) != 0 {
		t.Error("no request should be issued for an empty prompt")
	}
}

func TestQuery_ClosedClient(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"response":"x"}`), 200)
	client := newTestClient(t, mock)
	client.Close()

	_, err := client.Query(context.Background(), "hello")
	if !errors.Is(err, apierrors.ErrClientClosed) {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
	if len(mock.Requests) != 0 {
		t.Error("no request should be issued on a closed client")
	}
}

func TestQuery_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/real", http.StatusFound)
	})
	mux.HandleFunc("/real", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"hi"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(WithEndpoint(srv.URL + "/query"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	result, err := client.Query(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if result.Text != "hi" {
		t.Errorf("Text = %q, want %q", result.Text, "hi")
	}
}

func TestQuery_ResponseTooLarge(t *testing.T) {
	body := append([]byte(`{"response":"`), bytes.Repeat([]byte("x"), maxResponseBytes)...)
	body = append(body, []byte(`"}`)...)
	client := newTestClient(t, NewMockHttpClient(body, 200))

	_, err := client.Query(context.Background(), "hello")
	if !errors.Is(err, apierrors.ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
	if apierrors.IsParseError(err) || apierrors.IsUnexpectedResponse(err) {
		t.Errorf("an oversized body is not a reply-shape problem: %v", err)
	}
}

func TestQuery_BodyAtLimit(t *testing.T) {
	prefix, suffix := []byte(`{"response":"`), []byte(`"}`)
	fill := maxResponseBytes - len(prefix) - len(suffix)
	body := append(append(prefix, bytes.Repeat([]byte("y"), fill)...), suffix...)
	client := newTestClient(t, NewMockHttpClient(body, 200))

	result, err := client.Query(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Text) != fill {
		t.Errorf("len(Text) = %d, want %d", len(result.Text), fill)
	}
}

func TestQuery_NonJSONErrorStatusCarriesDetails(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte(`<html>502 Bad Gateway</html>`), 502))

	_, err := client.Query(context.Background(), "hello")
	if !apierrors.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if got := apierrors.GetHTTPStatus(err); got != 502 {
		t.Errorf("status = %d, want 502", got)
	}
	if got := apierrors.GetEndpoint(err); got != "http://localhost:8000/query" {
		t.Errorf("endpoint = %q", got)
	}
}

func TestQuery_NonJSONOKStatusHasNoStatusDetail(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte(`not json`), 200))

	_, err := client.Query(context.Background(), "hello")
	if !apierrors.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if got := apierrors.GetHTTPStatus(err); got != 0 {
		t.Errorf("status = %d, want 0 for a 2xx exchange", got)
	}
}
