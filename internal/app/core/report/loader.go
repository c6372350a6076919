package report

import (
	"context"
	"time"

	"github.com/dalemusser/wardwatch/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// ComplaintSource lists every complaint newest first.
type ComplaintSource interface {
	All(ctx context.Context) ([]models.Complaint, error)
}

// OfficerSource lists officers, optionally by admission status.
type OfficerSource interface {
	ListOfficers(ctx context.Context, status models.AdmissionStatus) ([]models.Account, error)
}

// Loader reads the inputs of a Snapshot concurrently and builds it.
type Loader struct {
	Complaints ComplaintSource
	Officers   OfficerSource
	Latest     int
	Now        func() time.Time
}

// Load fetches complaints and approved officers in parallel. Either failure
// cancels the other and is returned.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	var (
		complaints []models.Complaint
		officers   []models.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		complaints, err = l.Complaints.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		officers, err = l.Officers.ListOfficers(gctx, models.AdmissionApproved)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	latest := l.Latest
	if latest <= 0 {
		latest = DefaultLatest
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return Build(officers, complaints, latest, now().UTC()), nil
}
