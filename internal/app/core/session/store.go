package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/domain/models"
)

// ErrNoSession is returned by Load for unknown or expired ids.
var ErrNoSession = errors.New("session: not found")

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// record is the stored form of a Session.
type record struct {
	ID        string                `json:"id"`
	Identity  authprovider.Identity `json:"identity"`
	Account   *models.Account       `json:"account,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

func toRecord(s *Session) record {
	r := record{ID: s.ID, Identity: s.Identity, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt}
	if a, ok := s.Account(); ok {
		r.Account = &a
	}
	return r
}

func (r record) session() *Session {
	s := &Session{ID: r.ID, Identity: r.Identity, CreatedAt: r.CreatedAt, ExpiresAt: r.ExpiresAt}
	if r.Account != nil {
		s.Replace(*r.Account)
	}
	return s
}

// Memory keeps sessions in process memory. Loaded sessions are copies, so a
// caller's Replace is not visible until it saves again.
type Memory struct {
	mu   sync.Mutex
	recs map[string]record
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]record), now: time.Now}
}

// WithClock replaces the clock used for expiry.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Save(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[s.ID] = toRecord(s)
	return nil
}

func (m *Memory) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return nil, ErrNoSession
	}
	s := r.session()
	if s.Expired(m.now()) {
		delete(m.recs, id)
		return nil, ErrNoSession
	}
	return s, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, id)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, r := range m.recs {
		if !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt) {
			delete(m.recs, id)
			n++
		}
	}
	return n
}

// Len reports how many sessions are held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}
