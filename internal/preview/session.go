package preview

import (
	"context"
	"sync"

	"github.com/ironsheep/quick-view-mcp/internal/scope"
)

// Action tells the caller what to do with the popup.
type Action string

const (
	// ActionPreview means a result will arrive on Outcome.Result.
	ActionPreview Action = "preview"

	// ActionIgnore means the hover is inside the region whose popup is shown.
	ActionIgnore Action = "ignore"

	// ActionHide means the shown popup should be closed.
	ActionHide Action = "hide"
)

// Outcome is the immediate answer to a hover or invocation.
type Outcome struct {
	Action Action

	// Result receives the preview when Action is ActionPreview. It is closed
	// without a value if a newer request superseded this one first.
	Result <-chan Result
}

// Session serializes the requests of one view.
//
// A new request supersedes the one in flight: the older request stops waiting
// and delivers nothing, while any converter it started runs to completion and
// fills the cache. Small pointer movements inside the region whose popup is
// shown are ignored.
type Session struct {
	o *Orchestrator

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	active *scope.Region
}

// NewSession creates a session on o.
func NewSession(o *Orchestrator) *Session {
	return &Session{o: o}
}

// Hover handles a pointer hover.
func (s *Session) Hover(ctx context.Context, req Request) Outcome {
	req.Manual = false
	s.mu.Lock()
	if s.active != nil && s.active.Contains(req.Position) {
		s.mu.Unlock()
		return Outcome{Action: ActionIgnore}
	}
	s.mu.Unlock()
	return s.start(ctx, req)
}

// Invoke handles an explicit invocation. Invoking while a popup is shown
// closes it instead.
func (s *Session) Invoke(ctx context.Context, req Request) Outcome {
	req.Manual = true
	s.mu.Lock()
	if s.active != nil {
		s.active = nil
		s.mu.Unlock()
		return Outcome{Action: ActionHide}
	}
	s.mu.Unlock()
	return s.start(ctx, req)
}

// Hidden records that the popup was closed.
func (s *Session) Hidden() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// Active returns the region whose popup is shown.
func (s *Session) Active() (scope.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return scope.Region{}, false
	}
	return *s.active, true
}

func (s *Session) start(ctx context.Context, req Request) Outcome {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer cancel()
		res := s.o.Build(ctx, req)

		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.seq {
			return
		}
		s.cancel = nil
		if res.OK() {
			r := res.Payload.Region.Region()
			s.active = &r
		}
		out <- res
	}()
	return Outcome{Action: ActionPreview, Result: out}
}
