// Package session carries the signed-in user and workspace explicitly.
//
// A Session is created by Login and passed down through context; nothing is
// kept in package-level state, so two screens can hold different sessions.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session errors.
var (
	ErrMissingUser      = errors.New("session user is required")
	ErrMissingWorkspace = errors.New("session workspace is required")
	ErrNoSession        = errors.New("no active session")
)

// Session is one signed-in user working in one workspace.
type Session struct {
	id        string
	user      string
	workspace string
	createdAt time.Time

	mu       sync.RWMutex
	loggedAt time.Time
	active   bool
}

// Login starts a session for user in workspace.
func Login(user, workspace string) (*Session, error) {
	user = strings.TrimSpace(user)
	workspace = strings.TrimSpace(workspace)
	if user == "" {
		return nil, ErrMissingUser
	}
	if workspace == "" {
		return nil, ErrMissingWorkspace
	}

	now := time.Now()
	return &Session{
		id:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		user:      user,
		workspace: workspace,
		createdAt: now,
		active:    true,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// User returns the signed-in user.
func (s *Session) User() string { return s.user }

// Workspace returns the workspace the session operates in.
func (s *Session) Workspace() string { return s.workspace }

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Active reports whether the session has not been logged out.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Logout ends the session. Calling it again is a no-op.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.active = false
		s.loggedAt = time.Now()
	}
}

// LoggedOutAt returns when Logout was called, or the zero time.
func (s *Session) LoggedOutAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedAt
}

type contextKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// Require returns the active session in ctx or ErrNoSession.
func Require(ctx context.Context) (*Session, error) {
	s := FromContext(ctx)
	if !s.Active() {
		return nil, ErrNoSession
	}
	return s, nil
}
