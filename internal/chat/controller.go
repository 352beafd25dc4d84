// Package chat drives a single conversation: it turns user submissions
// into store mutations and one query per submission.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/agui/internal/api"
	apierrors "github.com/diogo/agui/internal/errors"
	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/models"
	"github.com/diogo/agui/internal/store"
)

var (
	ErrEmptyInput       = errors.New("input is empty")
	ErrRequestInFlight  = errors.New("a request is already awaiting a response")
	ErrStaleResolution  = errors.New("resolution does not match the outstanding request")
	ErrNoRequestPending = errors.New("no request is awaiting a response")
)

// State is the controller's position in the send cycle
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
	// StateResolved is only observable while store observers run
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// OutcomeKind classifies how a query settled
type OutcomeKind int

const (
	OutcomeReply OutcomeKind = iota
	OutcomeFallback
	OutcomeTransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReply:
		return "reply"
	case OutcomeFallback:
		return "fallback"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is the settled result of one query. Text is always the
// message shown to the user; Err keeps the cause for failures.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Err  error
}

// Failed reports whether the query did not produce a reply
func (o Outcome) Failed() bool {
	return o.Kind != OutcomeReply
}

// Request ties a submission to the placeholder it created
type Request struct {
	ID          string
	Input       string
	PendingID   string
	SubmittedAt time.Time
}

// Controller owns the send cycle for one store
type Controller struct {
	store  *store.Store
	client api.QueryClientInterface
	now    func() time.Time

	mu       sync.Mutex
	state    State
	inflight *Request
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a controller that appends to st and queries client
func NewController(st *store.Store, client api.QueryClientInterface, opts ...Option) *Controller {
	c := &Controller{
		store:  st,
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSession creates a store opened by the greeting and a controller bound to it
func NewSession(greeting string, client api.QueryClientInterface, opts ...Option) *Controller {
	c := NewController(nil, client, opts...)
	c.store = store.New(models.NewGreeting(greeting, c.now()))
	return c
}

// Store returns the message store this controller mutates
func (c *Controller) Store() *store.Store {
	return c.store
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight returns the outstanding request, or nil when idle
func (c *Controller) InFlight() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight
}

// Submit validates input and, when accepted, appends the user message
// followed by a pending placeholder. The raw input is kept untrimmed.
func (c *Controller) Submit(input string) (*Request, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	now := c.now()
	user := models.NewUserMessage(input, now)
	pending := models.NewPendingMessage(now)
	req := &Request{
		ID:          uuid.NewString(),
		Input:       input,
		PendingID:   pending.ID,
		SubmittedAt: now,
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	c.state = StateAwaitingResponse
	c.inflight = req
	c.mu.Unlock()

	// Observers may read State, so the store is mutated without c.mu held
	if err := c.store.Append(user); err != nil {
		c.reset()
		return nil, fmt.Errorf("append user message: %w", err)
	}
	if err := c.store.Append(pending); err != nil {
		c.reset()
		return nil, fmt.Errorf("append placeholder: %w", err)
	}

	logger.Debug("submission accepted", "request_id", req.ID, "bytes", len(input))
	return req, nil
}

// Dispatch performs the single query for req and classifies the result.
// It never touches the store and is safe to call off the UI loop.
func (c *Controller) Dispatch(ctx context.Context, req *Request) Outcome {
	log := logger.With("request_id", req.ID)

	result, err := c.client.Query(ctx, req.Input)
	switch {
	case err == nil && result != nil && result.Text != "":
		log.Debug("query answered", "status", result.StatusCode)
		return Outcome{Kind: OutcomeReply, Text: result.Text}
	case err == nil:
		log.Warn("query returned no reply")
		return Outcome{Kind: OutcomeFallback, Text: models.FallbackText, Err: apierrors.ErrUnexpectedResponse}
	case apierrors.IsUnexpectedResponse(err):
		log.Warn("unexpected response", "error", err, "status", apierrors.GetHTTPStatus(err))
		return Outcome{Kind: OutcomeFallback, Text: models.FallbackText, Err: err}
	default:
		log.Warn("query failed", "error", err, "timeout", apierrors.IsTimeoutError(err))
		return Outcome{Kind: OutcomeTransportFailure, Text: models.TransportErrorText, Err: err}
	}
}

// Resolve replaces the placeholder created for req with an assistant
// message carrying the outcome text, then returns the controller to idle.
func (c *Controller) Resolve(req *Request, out Outcome) error {
	c.mu.Lock()
	if c.inflight == nil {
		c.mu.Unlock()
		return ErrNoRequestPending
	}
	if req == nil || c.inflight.ID != req.ID {
		c.mu.Unlock()
		return ErrStaleResolution
	}
	c.mu.Unlock()

	pending, ok := c.store.Pending()
	if !ok || pending.ID != req.PendingID {
		return ErrStaleResolution
	}

	c.setState(StateResolved)
	if err := c.store.ReplaceLast(models.NewAssistantMessage(out.Text, c.now())); err != nil {
		c.setState(StateAwaitingResponse)
		return fmt.Errorf("replace placeholder: %w", err)
	}
	c.reset()

	logger.Debug("request resolved", "request_id", req.ID, "outcome", out.Kind.String())
	return nil
}

// Send runs a full cycle synchronously
func (c *Controller) Send(ctx context.Context, input string) (Outcome, error) {
	req, err := c.Submit(input)
	if err != nil {
		return Outcome{}, err
	}
	out := c.Dispatch(ctx, req)
	if err := c.Resolve(req, out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.state = StateIdle
	c.inflight = nil
	c.mu.Unlock()
}
