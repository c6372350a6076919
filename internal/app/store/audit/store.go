// internal/app/store/audit/store.go
package audit

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
)

// Collection holds audit events.
const Collection = "audit_events"

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess         = "login_success"
	EventLoginFailed          = "login_failed"
	EventLoginFailedRateLimit = "login_failed_rate_limit"
	EventLogout               = "logout"
	EventRegistered           = "registered"
)

// Admin event types
const (
	EventOfficerApproved   = "officer_approved"
	EventOfficerRejected   = "officer_rejected"
	EventComplaintAssigned = "complaint_assigned"
	EventStatusAdvanced    = "complaint_status_advanced"
	EventAdminProvisioned  = "admin_provisioned"
)

// Event represents an audit event.
type Event struct {
	ID        string    `bson:"_id,omitempty"`
	Timestamp time.Time `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	UserID  string `bson:"user_id,omitempty"`  // affected account
	ActorID string `bson:"actor_id,omitempty"` // who performed the action

	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter narrows Query. Zero fields are ignored.
type QueryFilter struct {
	UserID    string
	Category  string
	EventType string
	Since     *time.Time
	Limit     int
}

// Store manages audit event records.
type Store struct {
	ds docstore.Store
}

// New creates a new audit Store.
func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.ds.Create(ctx, Collection, event)
	return err
}

// Query returns matching events, most recent first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	var fs []docstore.Filter
	if filter.UserID != "" {
		fs = append(fs, docstore.Where("user_id", docstore.OpEq, filter.UserID))
	}
	if filter.Category != "" {
		fs = append(fs, docstore.Where("category", docstore.OpEq, filter.Category))
	}
	if filter.EventType != "" {
		fs = append(fs, docstore.Where("event_type", docstore.OpEq, filter.EventType))
	}
	if filter.Since != nil {
		fs = append(fs, docstore.Where("timestamp", docstore.OpGte, *filter.Since))
	}

	recs, err := s.ds.Query(ctx, Collection, fs...)
	if err != nil {
		return nil, err
	}
	events, err := docstore.DecodeAll[Event](recs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// GetByUser retrieves recent audit events for a specific account.
func (s *Store) GetByUser(ctx context.Context, userID string, limit int) ([]Event, error) {
	return s.Query(ctx, QueryFilter{UserID: userID, Limit: limit})
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
