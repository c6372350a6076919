package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultTTL is the session lifetime when Guard.TTL is unset.
const DefaultTTL = 24 * time.Hour

// Authenticator is the credential collaborator.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (authprovider.Identity, error)
	SignOut(ctx context.Context, id authprovider.Identity) error
	Verify(ctx context.Context, token string) (authprovider.Identity, error)
}

// AccountSource loads account profiles by identity id.
type AccountSource interface {
	GetByID(ctx context.Context, id string) (models.Account, error)
}

// AccessType is the area a login form asserts: the public (citizen) side or
// the staff (officer and admin) side.
type AccessType int

const (
	AccessCitizen AccessType = iota + 1
	AccessStaff
)

// ParseAccessType accepts "user" or "citizen" for the public side and
// "officer", "admin" or "staff" for the staff side.
func ParseAccessType(s string) (AccessType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "citizen", "public":
		return AccessCitizen, true
	case "officer", "admin", "staff":
		return AccessStaff, true
	}
	return 0, false
}

// Credential is a login attempt. ZoneID and Ward are required on the
// citizen side only.
type Credential struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	AccessType string `json:"accessType"`
	ZoneID     string `json:"zoneId"`
	Ward       string `json:"ward"`
}

// Guard signs actors in and out and restores sessions on later requests.
type Guard struct {
	Auth     Authenticator
	Accounts AccountSource
	Zones    *zones.Directory
	Store    Store
	TTL      time.Duration
	Now      func() time.Time
	Log      *zap.Logger
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Guard) log() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}

func (g *Guard) ttl() time.Duration {
	if g.TTL > 0 {
		return g.TTL
	}
	return DefaultTTL
}

// Login authenticates cred, loads the matching account and checks it against
// the asserted access type, the officer admission state and, for citizens,
// the claimed zone and ward. On success the session is saved.
func (g *Guard) Login(ctx context.Context, cred Credential) (*Session, error) {
	access, err := checkCredential(cred)
	if err != nil {
		return nil, err
	}

	id, err := g.Auth.SignIn(ctx, cred.Email, cred.Password)
	if err != nil {
		return nil, err
	}

	acct, err := g.Accounts.GetByID(ctx, id.UID)
	if err != nil {
		g.revoke(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrProfileMissing.With("Profile record missing. Please contact the civic helpdesk.")
		}
		return nil, err
	}

	if err := CheckAccess(g.Zones, acct, access, cred.ZoneID, cred.Ward); err != nil {
		g.revoke(ctx, id)
		return nil, err
	}

	s := New(id, acct, g.now(), g.ttl())
	if err := g.Store.Save(ctx, s); err != nil {
		g.log().Error("session save failed", zap.String("uid", id.UID), zap.Error(err))
		g.revoke(ctx, id)
		return nil, apperr.Collaborator("unavailable", err)
	}
	return s, nil
}

func checkCredential(cred Credential) (AccessType, error) {
	var missing []string
	if strings.TrimSpace(cred.Email) == "" {
		missing = append(missing, "email")
	}
	if cred.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return 0, apperr.Validation("Email and password are required.", missing...)
	}
	access, ok := ParseAccessType(cred.AccessType)
	if !ok {
		return 0, apperr.Validation("Choose Public or Officer access type.", "accessType")
	}
	if access == AccessCitizen {
		missing = missing[:0]
		if strings.TrimSpace(cred.ZoneID) == "" {
			missing = append(missing, "zoneId")
		}
		if strings.TrimSpace(cred.Ward) == "" {
			missing = append(missing, "ward")
		}
		if len(missing) > 0 {
			return 0, apperr.Validation("Please select your zone and ward.", missing...)
		}
	}
	return access, nil
}

// CheckAccess applies the post-authentication login rules in order: access
// type against role, officer admission, then the citizen's zone and ward
// against the stored profile. A profile without a zone id falls back to the
// zone its ward belongs to.
func CheckAccess(dir *zones.Directory, acct models.Account, access AccessType, zoneID, ward string) error {
	switch {
	case access == AccessCitizen && acct.Role != models.RoleCitizen:
		return apperr.ErrRoleMismatch.With("This account is registered as an officer/admin. Choose Officer access type.")
	case access == AccessStaff && acct.Role == models.RoleCitizen:
		return apperr.ErrRoleMismatch.With("This account belongs to a citizen. Choose Public access type.")
	}

	if acct.Role == models.RoleOfficer {
		switch acct.Admission() {
		case models.AdmissionPending:
			return apperr.ErrAccountPending
		case models.AdmissionRejected:
			return apperr.ErrAccountRejected
		}
	}

	if access != AccessCitizen {
		return nil
	}
	stored := acct.ZoneID
	if stored == "" && dir != nil {
		if z, ok := dir.ZoneByWard(acct.Ward); ok {
			stored = z.ID
		}
	}
	if stored != "" && stored != strings.TrimSpace(zoneID) {
		return apperr.ErrZoneWardMismatch.With("Selected zone does not match your registered profile.")
	}
	if acct.Ward != "" && acct.Ward != normalize.Ward(ward) {
		return apperr.ErrZoneWardMismatch.With("Selected ward does not match your registered profile.")
	}
	return nil
}

// revoke signs the identity out, logging rather than returning failures.
func (g *Guard) revoke(ctx context.Context, id authprovider.Identity) {
	if err := g.Auth.SignOut(ctx, id); err != nil {
		g.log().Warn("credential revoke failed", zap.String("uid", id.UID), zap.Error(err))
	}
}

// Logout clears s locally, removes it from the store and revokes the
// credential. Store and revocation failures are logged; local logout always
// completes.
func (g *Guard) Logout(ctx context.Context, s *Session) {
	if s == nil {
		return
	}
	s.Clear()
	if err := g.Store.Delete(ctx, s.ID); err != nil {
		g.log().Warn("session delete failed", zap.String("session", s.ID), zap.Error(err))
	}
	if s.Identity.Token != "" {
		g.revoke(ctx, s.Identity)
	}
}

// Restore loads a saved session, re-verifies its token and refreshes the
// account. A session whose token no longer verifies, whose profile is gone,
// or whose officer is no longer approved is logged out and ErrNoSession or
// the admission error is returned.
func (g *Guard) Restore(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	s, err := g.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(g.now()) {
		g.Logout(ctx, s)
		return nil, ErrNoSession
	}
	if _, err := g.Auth.Verify(ctx, s.Identity.Token); err != nil {
		if apperr.KindOf(err) == apperr.KindCollaborator && apperr.CodeOf(err) == authprovider.CodeNetwork {
			return nil, err
		}
		g.Logout(ctx, s)
		return nil, ErrNoSession
	}

	acct, err := g.Accounts.GetByID(ctx, s.Identity.UID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			g.Logout(ctx, s)
			return nil, ErrNoSession
		}
		return nil, err
	}
	if acct.Role == models.RoleOfficer && acct.Admission() != models.AdmissionApproved {
		g.Logout(ctx, s)
		if acct.Admission() == models.AdmissionRejected {
			return nil, apperr.ErrAccountRejected
		}
		return nil, apperr.ErrAccountPending
	}

	s.Replace(acct)
	if err := g.Store.Save(ctx, s); err != nil {
		g.log().Warn("session refresh save failed", zap.String("session", s.ID), zap.Error(err))
	}
	return s, nil
}
