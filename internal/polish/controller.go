package polish

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/textpolish/textpolish/internal/debuglog"
)

// Hooks receive session updates. They are invoked synchronously while the
// controller lock is held, so notifications are totally ordered with state
// transitions; hooks must not call back into the controller. Nil hooks are
// skipped.
type Hooks struct {
	OnText   func(snapshot string)
	OnStatus func(status Status)
	OnError  func(err error) // fires once per failed session, never for cancellation
}

// Controller owns at most one live polish session at a time. Starting a new
// session cancels and detaches the previous one before any new text is
// published; a superseded session can never mutate the accumulated text.
type Controller struct {
	transport Transport
	hooks     Hooks
	log       *debuglog.Logger

	mu     sync.Mutex
	cur    *session
	status Status
	text   strings.Builder
}

type session struct {
	id     string
	cancel context.CancelFunc
}

func NewController(transport Transport, hooks Hooks) *Controller {
	return &Controller{
		transport: transport,
		hooks:     hooks,
		status:    StatusIdle,
	}
}

// SetLogger attaches a diagnostic logger. Safe to leave unset.
func (c *Controller) SetLogger(log *debuglog.Logger) {
	c.log = log
}

// Start cancels any existing session and begins a new one for content.
// The session inherits cancellation from ctx; Cancel and Reset also stop it.
func (c *Controller) Start(ctx context.Context, content string, cfg SessionConfig) error {
	if !cfg.Complete() {
		return ErrIncompleteConfig
	}

	c.mu.Lock()
	c.detachLocked()
	sessCtx, cancel := context.WithCancel(ctx)
	s := &session{id: uuid.NewString(), cancel: cancel}
	c.cur = s
	c.text.Reset()
	c.setStatusLocked(StatusRequesting)
	if c.hooks.OnText != nil {
		c.hooks.OnText("")
	}
	c.mu.Unlock()

	c.log.Printf("session %s: start provider=%s model=%s content=%dB",
		s.id, cfg.Provider, cfg.Model, len(content))
	go c.run(sessCtx, s, Request{Content: content, Config: cfg})
	return nil
}

// Cancel stops the current session, clears the accumulated text, and moves
// to Aborted. Idempotent; a no-op when no session is in flight.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// Reset cancels like Cancel and returns the controller to Idle, ready for
// the next Start.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.text.Reset()
	c.setStatusLocked(StatusIdle)
}

// Snapshot returns a point-in-time copy of the accumulated text.
func (c *Controller) Snapshot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) run(ctx context.Context, s *session, req Request) {
	defer s.cancel()

	stream, err := c.transport.Open(ctx, req)
	if err != nil {
		c.finish(s, err)
		return
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			c.finish(s, nil)
			return
		}
		if err != nil {
			c.finish(s, err)
			return
		}
		if !c.append(s, chunk) {
			// Superseded mid-read: the chunk is discarded, never published.
			return
		}
	}
}

// append publishes one chunk. Returns false when s is no longer the current
// session, in which case nothing was mutated.
func (c *Controller) append(s *session, chunk string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != s {
		return false
	}
	if c.status == StatusRequesting {
		c.setStatusLocked(StatusStreaming)
	}
	c.text.WriteString(chunk)
	if c.hooks.OnText != nil {
		c.hooks.OnText(c.text.String())
	}
	return true
}

// finish records the terminal state for s. A nil error is stream exhaustion.
func (c *Controller) finish(s *session, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != s {
		return
	}
	c.cur = nil

	switch {
	case err == nil:
		// An empty-but-ok stream still passes through Streaming so
		// observers see the same signal sequence as a non-empty one.
		if c.status == StatusRequesting {
			c.setStatusLocked(StatusStreaming)
		}
		c.setStatusLocked(StatusCompleted)
		c.log.Printf("session %s: completed (%d bytes)", s.id, c.text.Len())
	case errors.Is(err, context.Canceled):
		// The session context was cancelled out from under the read loop
		// (e.g. the parent ctx ended). Same outcome as Cancel.
		c.text.Reset()
		c.setStatusLocked(StatusAborted)
		if c.hooks.OnText != nil {
			c.hooks.OnText("")
		}
		c.log.Printf("session %s: aborted", s.id)
	default:
		// Partial text is kept so it is not silently lost.
		c.setStatusLocked(StatusFailed)
		c.log.Printf("session %s: failed: %v", s.id, err)
		if c.hooks.OnError != nil {
			c.hooks.OnError(err)
		}
	}
}

func (c *Controller) cancelLocked() {
	if c.cur == nil {
		return
	}
	s := c.cur
	c.cur = nil
	s.cancel()
	c.text.Reset()
	c.setStatusLocked(StatusAborted)
	if c.hooks.OnText != nil {
		c.hooks.OnText("")
	}
	c.log.Printf("session %s: cancelled", s.id)
}

// detachLocked severs the current session without publishing Aborted; used
// by Start, which immediately installs the replacement.
func (c *Controller) detachLocked() {
	if c.cur == nil {
		return
	}
	s := c.cur
	c.cur = nil
	s.cancel()
	c.log.Printf("session %s: superseded", s.id)
}

func (c *Controller) setStatusLocked(s Status) {
	c.status = s
	if c.hooks.OnStatus != nil {
		c.hooks.OnStatus(s)
	}
}
