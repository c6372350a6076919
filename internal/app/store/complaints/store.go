// internal/app/store/complaints/store.go
package complaintstore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection holds complaints.
const Collection = "complaints"

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Create inserts c and returns it with its generated id.
func (s *Store) Create(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	c.ID = ""
	id, err := s.ds.Create(ctx, Collection, c)
	if err != nil {
		return models.Complaint{}, err
	}
	c.ID = id
	return c, nil
}

// GetByID loads a complaint or returns an apperr not-found error.
func (s *Store) GetByID(ctx context.Context, id string) (models.Complaint, error) {
	rec, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.Complaint{}, err
	}
	var c models.Complaint
	if err := docstore.Decode(rec, &c); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

// ByReporter lists a citizen's complaints, newest first.
func (s *Store) ByReporter(ctx context.Context, userID string) ([]models.Complaint, error) {
	return s.query(ctx, docstore.Where("userId", docstore.OpEq, userID))
}

// ByWard lists complaints filed against a ward, newest first.
func (s *Store) ByWard(ctx context.Context, ward string) ([]models.Complaint, error) {
	return s.query(ctx, docstore.Where("ward", docstore.OpEq, ward))
}

// ByAssignee lists complaints assigned to an officer, newest first.
func (s *Store) ByAssignee(ctx context.Context, officerID string) ([]models.Complaint, error) {
	return s.query(ctx, docstore.Where("assignedOfficerId", docstore.OpEq, officerID))
}

// All lists every complaint, newest first.
func (s *Store) All(ctx context.Context) ([]models.Complaint, error) {
	return s.query(ctx)
}

func (s *Store) query(ctx context.Context, filters ...docstore.Filter) ([]models.Complaint, error) {
	recs, err := s.ds.Query(ctx, Collection, filters...)
	if err != nil {
		return nil, err
	}
	out, err := docstore.DecodeAll[models.Complaint](recs)
	if err != nil {
		return nil, err
	}
	SortNewest(out)
	return out, nil
}

// SortNewest orders complaints by creation time, newest first, breaking ties
// by ascending id.
func SortNewest(list []models.Complaint) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SetAssignment overwrites the assigned officer. The last write wins.
func (s *Store) SetAssignment(ctx context.Context, id, officerID, officerName string, at time.Time) error {
	return s.ds.Update(ctx, Collection, id, bson.M{
		"assignedOfficerId":   officerID,
		"assignedOfficerName": officerName,
		"assignedAt":          at,
	})
}

// SetStatus persists a new lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	return s.ds.Update(ctx, Collection, id, bson.M{"status": string(status)})
}
