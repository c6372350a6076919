// Package registration creates citizen and officer accounts, serves and
// edits profiles, and provisions the configured administrator.
package registration

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/core/session"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

// Credentials is the part of the auth collaborator registration needs.
type Credentials interface {
	SignUp(ctx context.Context, email, password string) (authprovider.Identity, error)
	SignOut(ctx context.Context, id authprovider.Identity) error
	SetPassword(ctx context.Context, email, password string) (authprovider.Identity, error)
}

// Service registers accounts and manages profiles.
type Service struct {
	Auth     Credentials
	Accounts *accountstore.Store
	Zones    *zones.Directory
	Blobs    blobstore.Store
	Log      *zap.Logger
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Request is a self-service registration.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	ZoneID   string `json:"zoneId"`
	Ward     string `json:"ward"`
}

// validate returns the account to create, minus its id.
func (s *Service) validate(req Request) (models.Account, error) {
	var fields []string
	if strings.TrimSpace(req.Email) == "" {
		fields = append(fields, "email")
	}
	if req.Password == "" {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		return models.Account{}, apperr.Validation("Email and password are mandatory.", fields...)
	}

	role, ok := models.ParseRole(req.Role)
	if req.Role == "" {
		role, ok = models.RoleCitizen, true
	}
	if !ok || role == models.RoleAdmin {
		return models.Account{}, apperr.Validation("Register as a citizen or a ward officer.", "role")
	}

	acct := models.Account{
		Email:   req.Email,
		Role:    role,
		Name:    req.Name,
		Phone:   normalize.Name(req.Phone),
		Address: normalize.Name(req.Address),
		Ward:    normalize.Ward(req.Ward),
	}

	switch role {
	case models.RoleCitizen:
		if normalize.Name(req.Name) == "" {
			fields = append(fields, "name")
		}
		if strings.TrimSpace(req.ZoneID) == "" {
			fields = append(fields, "zoneId")
		}
		if acct.Ward == "" {
			fields = append(fields, "ward")
		}
		if len(fields) > 0 {
			return models.Account{}, apperr.Validation("Name, zone, and ward are required for citizens.", fields...)
		}
		z, ok := s.Zones.Resolve(req.ZoneID, acct.Ward)
		if !ok {
			return models.Account{}, apperr.Validation("The selected ward is not part of the selected zone.", "ward")
		}
		acct.ZoneID, acct.ZoneName = z.ID, z.Name
	case models.RoleOfficer:
		z, ok := s.Zones.ZoneByWard(acct.Ward)
		if !ok {
			return models.Account{}, apperr.Validation("Ward officers must choose the ward they serve.", "ward")
		}
		acct.ZoneID, acct.ZoneName = z.ID, z.Name
		acct.Status = models.AdmissionPending
	}
	return acct, nil
}

// Register signs the credential up and stores the profile. Officers start
// pending; an optional badge document is uploaded for them. Input is
// validated before the credential is created.
func (s *Service) Register(ctx context.Context, req Request, badge *blobstore.File) (models.Account, error) {
	acct, err := s.validate(req)
	if err != nil {
		return models.Account{}, err
	}

	id, err := s.Auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return models.Account{}, err
	}
	acct.ID = id.UID

	if acct.Role == models.RoleOfficer && badge != nil && badge.Body != nil && s.Blobs != nil {
		ref, err := s.Blobs.Upload(ctx, blobstore.BadgePath(acct.ID, badge.Filename), badge.Body, badge.Size, badge.ContentType)
		if err != nil {
			// The credential exists; the officer can add the badge later.
			s.log().Warn("badge upload failed", zap.String("uid", acct.ID), zap.Error(err))
		} else {
			acct.BadgeURL = string(ref)
		}
	}

	created, err := s.Accounts.Create(ctx, acct)
	if err != nil {
		s.log().Error("profile create failed after sign-up", zap.String("uid", acct.ID), zap.Error(err))
		return models.Account{}, err
	}
	if err := s.Auth.SignOut(ctx, id); err != nil {
		s.log().Warn("sign-up token revoke failed", zap.String("uid", acct.ID), zap.Error(err))
	}
	s.log().Info("account registered",
		zap.String("uid", created.ID), zap.String("role", string(created.Role)), zap.String("ward", created.Ward))
	return created, nil
}

// EnsureAdmin makes email an administrator with password. A missing profile
// is created; an existing non-admin profile is promoted. promoted reports
// the latter.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (acct models.Account, promoted bool, err error) {
	id, err := s.Auth.SetPassword(ctx, email, password)
	if err != nil {
		return models.Account{}, false, err
	}
	if err := s.Auth.SignOut(ctx, id); err != nil {
		s.log().Warn("provisioning token revoke failed", zap.String("uid", id.UID), zap.Error(err))
	}

	existing, err := s.Accounts.GetByID(ctx, id.UID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		acct, err = s.Accounts.Create(ctx, models.Account{ID: id.UID, Email: id.Email, Role: models.RoleAdmin, Name: name})
		return acct, false, err
	case err != nil:
		return models.Account{}, false, err
	case existing.Role == models.RoleAdmin:
		return existing, false, nil
	}
	if err := s.Accounts.SetRole(ctx, id.UID, models.RoleAdmin); err != nil {
		return models.Account{}, false, err
	}
	acct, err = s.Accounts.GetByID(ctx, id.UID)
	return acct, true, err
}

// Profile returns the actor's stored profile with photo and badge
// references resolved to URLs.
func (s *Service) Profile(ctx context.Context, actor models.Account) (models.Account, error) {
	if err := session.Permit(&actor, models.Roles...); err != nil {
		return models.Account{}, err
	}
	acct, err := s.Accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return models.Account{}, err
	}
	return s.present(ctx, acct), nil
}

// ProfileInput holds the editable fields. Nil fields are left unchanged.
// Role, ward, zone and admission status are not editable here.
type ProfileInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateProfile edits the actor's own profile and optionally replaces the
// photo, which is stored at profiles/<uid>.
func (s *Service) UpdateProfile(ctx context.Context, actor models.Account, in ProfileInput, photo *blobstore.File) (models.Account, error) {
	if err := session.Permit(&actor, models.Roles...); err != nil {
		return models.Account{}, err
	}
	if in.Name != nil && normalize.Name(*in.Name) == "" && actor.Role == models.RoleCitizen {
		return models.Account{}, apperr.Validation("Name cannot be empty.", "name")
	}
	upd := accountstore.ProfileUpdate{Name: in.Name, Phone: in.Phone, Address: in.Address}
	if photo != nil && photo.Body != nil {
		if s.Blobs == nil {
			return models.Account{}, apperr.Validation("Photo uploads are not available.", "photo")
		}
		ref, err := s.Blobs.Upload(ctx, blobstore.ProfilePhotoPath(actor.ID), photo.Body, photo.Size, photo.ContentType)
		if err != nil {
			s.log().Error("profile photo upload failed", zap.String("uid", actor.ID), zap.Error(err))
			return models.Account{}, err
		}
		r := string(ref)
		upd.PhotoURL = &r
	}
	if err := s.Accounts.UpdateProfile(ctx, actor.ID, upd); err != nil {
		return models.Account{}, err
	}
	return s.Profile(ctx, actor)
}

func (s *Service) present(ctx context.Context, a models.Account) models.Account {
	for _, p := range []*string{&a.PhotoURL, &a.BadgeURL} {
		if *p == "" {
			continue
		}
		url, err := blobstore.Resolve(ctx, s.Blobs, *p)
		if err != nil {
			s.log().Warn("profile url unavailable", zap.String("uid", a.ID), zap.Error(err))
			url = ""
		}
		*p = url
	}
	return a
}
