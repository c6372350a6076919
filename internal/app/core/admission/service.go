package admission

import (
	"context"

	"github.com/dalemusser/wardwatch/internal/app/core/session"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

// Service applies admission decisions and answers officer directory queries.
type Service struct {
	Accounts *accountstore.Store
	Log      *zap.Logger
}

func New(accounts *accountstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Accounts: accounts, Log: logger}
}

// Approve admits a pending officer.
func (s *Service) Approve(ctx context.Context, actor models.Account, officerID string) (models.Account, error) {
	officer, _, err := s.Transition(ctx, actor, officerID, models.AdmissionApproved)
	return officer, err
}

// Reject turns a pending officer away.
func (s *Service) Reject(ctx context.Context, actor models.Account, officerID string) (models.Account, error) {
	officer, _, err := s.Transition(ctx, actor, officerID, models.AdmissionRejected)
	return officer, err
}

// Transition moves the officer to target and returns the officer as stored
// afterwards along with the status read before the move. Nothing is written
// when the guard denies or the status is already target.
func (s *Service) Transition(ctx context.Context, actor models.Account, officerID string, target models.AdmissionStatus) (models.Account, models.AdmissionStatus, error) {
	if err := session.Permit(&actor, models.RoleAdmin); err != nil {
		return models.Account{}, "", err
	}
	officer, err := s.Accounts.GetByID(ctx, officerID)
	if err != nil {
		return models.Account{}, "", err
	}
	from := officer.Admission()
	res := CanTransition(TransitionContext{
		ActorRole:   actor.Role,
		OfficerID:   officerID,
		OfficerRole: officer.Role,
		Current:     from,
		Target:      target,
	})
	if err := res.Error(); err != nil {
		return models.Account{}, "", err
	}
	if res.NoOp {
		return officer, from, nil
	}
	if err := s.Accounts.SetStatus(ctx, officerID, target); err != nil {
		s.Log.Error("admission status write failed",
			zap.String("officer", officerID), zap.String("status", string(target)), zap.Error(err))
		return models.Account{}, "", err
	}
	officer.Status = target
	s.Log.Info("officer admission decided",
		zap.String("officer", officerID), zap.String("actor", actor.ID), zap.String("status", string(target)))
	return officer, from, nil
}

// Officers lists every officer for an admin, optionally filtered by
// admission status, ordered by ward then name.
func (s *Service) Officers(ctx context.Context, actor models.Account, status models.AdmissionStatus) ([]models.Account, error) {
	if err := session.Permit(&actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Accounts.ListOfficers(ctx, status)
}

// Eligible lists approved officers, the only ones that may receive
// assignments. A non-empty ward narrows the list to that ward.
func (s *Service) Eligible(ctx context.Context, ward string) ([]models.Account, error) {
	all, err := s.Accounts.ListOfficers(ctx, models.AdmissionApproved)
	if err != nil {
		return nil, err
	}
	if ward == "" {
		return all, nil
	}
	ward = normalize.Ward(ward)
	out := all[:0]
	for _, o := range all {
		if o.Ward == ward {
			out = append(out, o)
		}
	}
	return out, nil
}
