// Package session holds the authenticated actor for a browser session and
// decides which actor may reach which area.
//
// A Session is created by Guard.Login, persisted in a Store keyed by its id,
// and carried through request handling in the context. Nothing here is
// global: every guarded operation receives the session (or its account)
// explicitly.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/google/uuid"
)

// Session is one signed-in actor. The account is replaced atomically when it
// is refreshed from the store; a cleared session is unauthenticated.
type Session struct {
	ID        string
	Identity  authprovider.Identity
	CreatedAt time.Time
	ExpiresAt time.Time

	account atomic.Pointer[models.Account]
}

// New creates a session for an identity and its account.
func New(id authprovider.Identity, acct models.Account, now time.Time, ttl time.Duration) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.Replace(acct)
	return s
}

// Account returns the current account, or false once cleared.
func (s *Session) Account() (models.Account, bool) {
	if s == nil {
		return models.Account{}, false
	}
	p := s.account.Load()
	if p == nil {
		return models.Account{}, false
	}
	return *p, true
}

// Replace swaps in a fresh copy of the account.
func (s *Session) Replace(acct models.Account) {
	a := acct
	s.account.Store(&a)
}

// Clear drops the account; the session becomes unauthenticated.
func (s *Session) Clear() {
	s.account.Store(nil)
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type ctxKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// Actor returns the signed-in account carried by ctx.
func Actor(ctx context.Context) (models.Account, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return models.Account{}, false
	}
	return s.Account()
}

// Require returns the actor in ctx when its role is one of roles.
func Require(ctx context.Context, roles ...models.Role) (models.Account, error) {
	acct, ok := Actor(ctx)
	if !ok {
		return models.Account{}, Permit(nil, roles...)
	}
	return acct, Permit(&acct, roles...)
}
