package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/agui/internal/errors"
	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/models"
)

// Query posts text to the endpoint and returns the reply.
// Status codes are recorded but never change how the body is interpreted.
func (c *Client) Query(ctx context.Context, text string) (*models.QueryResult, error) {
	if text == "" {
		return nil, apierrors.ErrEmptyPrompt
	}

	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	payload, err := json.Marshal(models.QueryRequest{Message: text})
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log := logger.With("request_id", requestID, "endpoint", c.endpoint, "timeout", c.Timeout())
	log.Debug("sending query", "bytes", len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("query transport failure", "error", err)
		if apierrors.IsTimeoutError(err) || ctx.Err() != nil {
			return nil, apierrors.NewNetworkErrorWithEndpoint("query", c.endpoint, apierrors.NewTimeoutError(err.Error()))
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("query", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		log.Warn("failed reading response body", "status", resp.StatusCode, "error", err)
		return nil, apierrors.NewNetworkErrorWithEndpoint("read response", c.endpoint, err)
	}
	if len(body) > maxResponseBytes {
		log.Warn("response body over limit", "status", resp.StatusCode, "limit", maxResponseBytes)
		return nil, fmt.Errorf("%w: body exceeds %d bytes", apierrors.ErrResponseTooLarge, maxResponseBytes)
	}

	log.Debug("query settled", "status", resp.StatusCode, "bytes", len(body))

	result, err := parseQueryResponse(body, resp.StatusCode, c.endpoint)
	if err != nil {
		return nil, err
	}
	result.RequestID = requestID
	return result, nil
}

// parseQueryResponse extracts the reply field from a response body.
// A body that is not JSON is a ParseError; a JSON body without a truthy
// reply field is an UnexpectedResponseError.
func parseQueryResponse(body []byte, statusCode int, endpoint string) (*models.QueryResult, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		parseErr := apierrors.NewParseError("response body is not valid JSON", "")
		if statusCode < 200 || statusCode > 299 {
			parseErr.Cause = apierrors.NewAPIErrorWithBody(statusCode, endpoint, http.StatusText(statusCode), snippet(body))
		}
		return nil, parseErr
	}

	parsed := gjson.ParseBytes(body)
	reply := lastField(parsed, PathReply)
	if !isTruthy(reply) {
		backendErr := ""
		if e := lastField(parsed, PathError); e.Exists() {
			backendErr = e.String()
		}
		return nil, apierrors.NewUnexpectedResponseError(PathReply, backendErr, statusCode)
	}

	text := reply.String()
	if reply.Type == gjson.JSON {
		text = reply.Raw
	}

	return &models.QueryResult{
		Text:       text,
		StatusCode: statusCode,
	}, nil
}

// lastField returns the final occurrence of a top-level key. Objects with
// repeated keys resolve to the last value, as JSON.parse and json.loads do.
func lastField(obj gjson.Result, key string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// isTruthy mirrors how a dynamic client would test the field:
// absent, null, false, 0 and "" do not count as a reply
func isTruthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0 && !math.IsNaN(r.Num)
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
