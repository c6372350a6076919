package complaint

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/core/classify"
	"github.com/dalemusser/wardwatch/internal/app/core/session"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	complaintstore "github.com/dalemusser/wardwatch/internal/app/store/complaints"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

// Service runs the complaint lifecycle against the stores. Concurrent
// Assign and AdvanceStatus calls on one complaint are last-writer-wins.
type Service struct {
	Complaints *complaintstore.Store
	Accounts   *accountstore.Store
	Zones      *zones.Directory
	Blobs      blobstore.Store
	Classifier classify.Classifier
	Now        func() time.Time
	Log        *zap.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) classifier() classify.Classifier {
	if s.Classifier == nil {
		return classify.NewKeywords()
	}
	return s.Classifier
}

// Submit validates and stores a citizen's complaint. Validation happens
// before any upload or write. The complaint always starts Pending;
// aiVerified only records what the classifier said.
func (s *Service) Submit(ctx context.Context, reporter models.Account, sub Submission, ev *blobstore.File) (models.Complaint, error) {
	if err := session.Permit(&reporter, models.RoleCitizen); err != nil {
		return models.Complaint{}, err
	}
	v, err := ValidateSubmission(s.Zones, sub)
	if err != nil {
		return models.Complaint{}, err
	}
	now := s.now()

	ref := sub.EvidenceRef
	if ev == nil || ev.Body == nil {
		if err := CheckEvidenceRef(reporter.ID, ref); err != nil {
			return models.Complaint{}, err
		}
	} else {
		if s.Blobs == nil {
			return models.Complaint{}, apperr.Validation("Photo uploads are not available.", "image")
		}
		path := blobstore.ComplaintEvidencePath(reporter.ID, ev.Filename, now)
		r, err := s.Blobs.Upload(ctx, path, ev.Body, ev.Size, ev.ContentType)
		if err != nil {
			s.log().Error("evidence upload failed", zap.String("reporter", reporter.ID), zap.Error(err))
			return models.Complaint{}, err
		}
		ref = string(r)
	}

	lat, lng := v.Latitude, v.Longitude
	c, err := s.Complaints.Create(ctx, models.Complaint{
		UserID:      reporter.ID,
		ZoneID:      v.Zone.ID,
		ZoneName:    v.Zone.Name,
		Category:    v.Category,
		Description: v.Description,
		ImageURL:    ref,
		Latitude:    &lat,
		Longitude:   &lng,
		Ward:        v.Ward,
		Status:      models.StatusPending,
		AIVerified:  s.classifier().Classify(v.Description),
		CreatedAt:   now,
	})
	if err != nil {
		s.log().Error("complaint create failed", zap.String("reporter", reporter.ID), zap.Error(err))
		return models.Complaint{}, err
	}
	s.log().Info("complaint submitted",
		zap.String("complaint", c.ID), zap.String("ward", c.Ward), zap.Bool("aiVerified", c.AIVerified))
	return s.present(ctx, c), nil
}

// Assign binds an approved officer to a complaint, replacing any earlier
// assignment. It returns the complaint as stored afterwards and the
// officer it replaced, if any.
func (s *Service) Assign(ctx context.Context, actor models.Account, complaintID, officerID string) (models.Complaint, string, error) {
	if err := session.Permit(&actor, models.RoleAdmin); err != nil {
		return models.Complaint{}, "", err
	}
	c, err := s.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return models.Complaint{}, "", err
	}

	officer, err := s.Accounts.GetByID(ctx, officerID)
	found := err == nil
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return models.Complaint{}, "", err
	}
	if err := CanAssign(AssignContext{
		ActorRole:    actor.Role,
		OfficerID:    officerID,
		OfficerFound: found,
		Officer:      officer,
	}).Error(); err != nil {
		return models.Complaint{}, "", err
	}

	previous := c.AssignedOfficerID
	at := s.now()
	if err := s.Complaints.SetAssignment(ctx, c.ID, officer.ID, officer.Name, at); err != nil {
		s.log().Error("complaint assign failed", zap.String("complaint", c.ID), zap.Error(err))
		return models.Complaint{}, "", err
	}
	c.AssignedOfficerID, c.AssignedOfficerName, c.AssignedAt = officer.ID, officer.Name, &at
	return s.present(ctx, c), previous, nil
}

// AdvanceStatus moves a complaint forward. Officers may only act on
// complaints in their ward or assigned to them. Re-applying the current
// status succeeds without a write. It returns the complaint and the status
// it had before.
func (s *Service) AdvanceStatus(ctx context.Context, actor models.Account, complaintID, target string) (models.Complaint, models.ComplaintStatus, error) {
	if err := session.Permit(&actor, models.RoleOfficer, models.RoleAdmin); err != nil {
		return models.Complaint{}, "", err
	}
	to, ok := models.ParseComplaintStatus(target)
	if !ok {
		return models.Complaint{}, "", apperr.Validation("Choose Pending, In Progress or Resolved.", "status")
	}
	c, err := s.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return models.Complaint{}, "", err
	}
	if err := CanTriage(triageOf(actor, c)).Error(); err != nil {
		return models.Complaint{}, "", err
	}
	from := c.Status
	res := CanAdvance(AdvanceContext{ComplaintID: c.ID, Current: from, Target: to})
	if err := res.Error(); err != nil {
		return models.Complaint{}, "", err
	}
	if !res.NoOp {
		if err := s.Complaints.SetStatus(ctx, c.ID, to); err != nil {
			s.log().Error("complaint status write failed", zap.String("complaint", c.ID), zap.Error(err))
			return models.Complaint{}, "", err
		}
		c.Status = to
	}
	return s.present(ctx, c), from, nil
}

func triageOf(actor models.Account, c models.Complaint) TriageContext {
	return TriageContext{
		ActorID:           actor.ID,
		ActorRole:         actor.Role,
		ActorWard:         actor.Ward,
		ComplaintWard:     c.Ward,
		AssignedOfficerID: c.AssignedOfficerID,
	}
}

// Get returns one complaint to its reporter, to an officer who may triage
// it, or to an admin.
func (s *Service) Get(ctx context.Context, actor models.Account, id string) (models.Complaint, error) {
	if err := session.Permit(&actor, models.Roles...); err != nil {
		return models.Complaint{}, err
	}
	c, err := s.Complaints.GetByID(ctx, id)
	if err != nil {
		return models.Complaint{}, err
	}
	if actor.Role == models.RoleCitizen {
		if c.UserID != actor.ID {
			return models.Complaint{}, apperr.NotFound("complaint")
		}
	} else if err := CanTriage(triageOf(actor, c)).Error(); err != nil {
		return models.Complaint{}, err
	}
	return s.present(ctx, c), nil
}

// ByReporter lists a reporter's complaints newest first. Citizens may only
// list their own.
func (s *Service) ByReporter(ctx context.Context, actor models.Account, reporterID string) ([]models.Complaint, error) {
	if err := session.Permit(&actor, models.RoleCitizen, models.RoleAdmin); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCitizen && actor.ID != reporterID {
		return nil, apperr.ErrForbidden.With("citizens can only list their own complaints")
	}
	list, err := s.Complaints.ByReporter(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	return s.Present(ctx, list), nil
}

// ByWard lists a ward's complaints newest first. Officers may only list
// their own ward.
func (s *Service) ByWard(ctx context.Context, actor models.Account, ward string) ([]models.Complaint, error) {
	if err := session.Permit(&actor, models.RoleOfficer, models.RoleAdmin); err != nil {
		return nil, err
	}
	ward = normalize.Ward(ward)
	if actor.Role == models.RoleOfficer && actor.Ward != ward {
		return nil, apperr.ErrForbidden.With("officers can only list their own ward")
	}
	list, err := s.Complaints.ByWard(ctx, ward)
	if err != nil {
		return nil, err
	}
	return s.Present(ctx, list), nil
}

// Desk is an officer's working list: complaints in their ward plus any
// assigned to them elsewhere, newest first.
func (s *Service) Desk(ctx context.Context, actor models.Account) ([]models.Complaint, error) {
	if err := session.Permit(&actor, models.RoleOfficer); err != nil {
		return nil, err
	}
	list, err := s.Complaints.ByWard(ctx, actor.Ward)
	if err != nil {
		return nil, err
	}
	assigned, err := s.Complaints.ByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range assigned {
		if !slices.ContainsFunc(list, func(x models.Complaint) bool { return x.ID == c.ID }) {
			list = append(list, c)
		}
	}
	complaintstore.SortNewest(list)
	return s.Present(ctx, list), nil
}

// All lists every complaint newest first, for admins.
func (s *Service) All(ctx context.Context, actor models.Account) ([]models.Complaint, error) {
	if err := session.Permit(&actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.Complaints.All(ctx)
	if err != nil {
		return nil, err
	}
	return s.Present(ctx, list), nil
}

// present turns the stored evidence reference into a URL. A reference that
// cannot be resolved is logged and dropped from the response.
func (s *Service) present(ctx context.Context, c models.Complaint) models.Complaint {
	if c.ImageURL == "" {
		return c
	}
	url, err := blobstore.Resolve(ctx, s.Blobs, c.ImageURL)
	if err != nil {
		s.log().Warn("evidence url unavailable", zap.String("complaint", c.ID), zap.Error(err))
		url = ""
	}
	c.ImageURL = url
	return c
}

// Present resolves evidence references on a list in place, for callers that
// read complaints outside the service such as the admin overview.
func (s *Service) Present(ctx context.Context, list []models.Complaint) []models.Complaint {
	for i := range list {
		list[i] = s.present(ctx, list[i])
	}
	return list
}
