package agent

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Deletion confirmation states.
const (
	StateNoPending            statekit.StateID = "NoPending"
	StateAwaitingConfirmation statekit.StateID = "AwaitingConfirmation"
)

const (
	eventRequest statekit.EventType = "REQUEST"
	eventConfirm statekit.EventType = "CONFIRM"
	eventCancel  statekit.EventType = "CANCEL"
)

// deletionContext is the single pending-deletion slot.
type deletionContext struct {
	Path string
}

var deletionMachine = mustBuildDeletionMachine()

func mustBuildDeletionMachine() *statekit.MachineConfig[*deletionContext] {
	machine, err := statekit.NewMachine[*deletionContext]("deletion").
		WithInitial(StateNoPending).
		WithContext(&deletionContext{}).
		WithAction("remember", rememberPath).
		WithAction("forget", forgetPath).
		State(StateNoPending).
		On(eventRequest).Target(StateAwaitingConfirmation).Do("remember").
		On(eventConfirm).Target(StateNoPending).Do("forget").
		On(eventCancel).Target(StateNoPending).Do("forget").
		Done().
		State(StateAwaitingConfirmation).
		On(eventRequest).Target(StateAwaitingConfirmation).Do("remember").
		On(eventConfirm).Target(StateNoPending).Do("forget").
		On(eventCancel).Target(StateNoPending).Do("forget").
		Done().
		Build()
	if err != nil {
		panic("building deletion state machine: " + err.Error())
	}
	return machine
}

func rememberPath(ctx **deletionContext, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if path, ok := event.Payload.(string); ok {
		(*ctx).Path = path
	}
}

func forgetPath(ctx **deletionContext, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).Path = ""
}

// Session carries per-conversation state: the pending deletion slot.
// A second request while awaiting confirmation replaces the pending path.
type Session struct {
	ID string

	mu     sync.Mutex
	ctx    *deletionContext
	interp *statekit.Interpreter[*deletionContext]
}

// NewSession creates a session with nothing pending.
func NewSession(id string) *Session {
	ctx := &deletionContext{}
	interp := statekit.NewInterpreter(deletionMachine)
	interp.UpdateContext(func(c **deletionContext) {
		*c = ctx
	})
	interp.Start()

	return &Session{ID: id, ctx: ctx, interp: interp}
}

// RequestDeletion records path as awaiting confirmation.
func (s *Session) RequestDeletion(path string) {
	s.send(statekit.Event{Type: eventRequest, Payload: path})
}

// ConfirmDeletion clears the slot after a confirmed delete.
func (s *Session) ConfirmDeletion() {
	s.send(statekit.Event{Type: eventConfirm})
}

// CancelDeletion clears the slot without deleting anything.
func (s *Session) CancelDeletion() {
	s.send(statekit.Event{Type: eventCancel})
}

func (s *Session) send(event statekit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interp.Send(event)
}

// Pending returns the path awaiting confirmation, if any.
func (s *Session) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.interp.Matches(StateAwaitingConfirmation) {
		return "", false
	}
	return s.ctx.Path, true
}

// State returns the current confirmation state.
func (s *Session) State() statekit.StateID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interp.State().Value
}

// Session store limits used by NewSessions.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1024
)

// Sessions hands out sessions by id, creating them on first use. Sessions
// idle for longer than the TTL are dropped, and the least recently used one
// is evicted once the store is full.
type Sessions struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
}

func NewSessions() *Sessions {
	return NewSessionsWithLimits(DefaultMaxSessions, DefaultSessionTTL)
}

// NewSessionsWithLimits creates a store holding at most maxSessions sessions,
// each expiring after ttl without use.
func NewSessionsWithLimits(maxSessions int, ttl time.Duration) *Sessions {
	return &Sessions{sessions: expirable.NewLRU[string, *Session](maxSessions, nil, ttl)}
}

// Get returns the session for id, creating it if needed. Every call restarts
// the session's idle timer.
func (ss *Sessions) Get(id string) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, ok := ss.sessions.Get(id)
	if !ok {
		session = NewSession(id)
	}
	ss.sessions.Add(id, session)
	return session
}

// Len returns the number of live sessions.
func (ss *Sessions) Len() int {
	return ss.sessions.Len()
}
