package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	guard    *session.Guard
	auth     *authprovider.Provider
	accounts *accountstore.Store
	store    *session.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ds := docstore.NewMemory()
	auth, err := authprovider.New(ds, authprovider.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		BcryptCost: bcrypt.MinCost,
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{auth: auth, accounts: accountstore.New(ds), store: session.NewMemory()}
	f.guard = &session.Guard{
		Auth:     auth,
		Accounts: f.accounts,
		Zones:    zones.Default(),
		Store:    f.store,
		Log:      zap.NewNop(),
	}
	return f
}

// register creates a credential and, when acct is non-nil, its profile.
func (f *fixture) register(t *testing.T, email string, acct *models.Account) string {
	t.Helper()
	ctx := context.Background()
	id, err := f.auth.SignUp(ctx, email, "secret1")
	if err != nil {
		t.Fatalf("SignUp(%s): %v", email, err)
	}
	if acct != nil {
		acct.ID = id.UID
		acct.Email = email
		if _, err := f.accounts.Create(ctx, *acct); err != nil {
			t.Fatalf("Create(%s): %v", email, err)
		}
	}
	return id.UID
}

func TestCheckAccess(t *testing.T) {
	dir := zones.Default()
	citizen := models.Account{Role: models.RoleCitizen, ZoneID: "zone-1", Ward: "Ward 12"}
	legacy := models.Account{Role: models.RoleCitizen, Ward: "Ward 30"}
	pending := models.Account{Role: models.RoleOfficer, Ward: "Ward 12", Status: models.AdmissionPending}
	unset := models.Account{Role: models.RoleOfficer, Ward: "Ward 12"}
	rejected := models.Account{Role: models.RoleOfficer, Ward: "Ward 12", Status: models.AdmissionRejected}
	approved := models.Account{Role: models.RoleOfficer, Ward: "Ward 12", Status: models.AdmissionApproved}
	admin := models.Account{Role: models.RoleAdmin}

	tests := []struct {
		name   string
		acct   models.Account
		access session.AccessType
		zone   string
		ward   string
		want   error
	}{
		{"citizen ok", citizen, session.AccessCitizen, "zone-1", "Ward 12", nil},
		{"citizen ward shorthand", citizen, session.AccessCitizen, "zone-1", "12", nil},
		{"citizen as staff", citizen, session.AccessStaff, "", "", apperr.ErrRoleMismatch},
		{"officer as citizen", approved, session.AccessCitizen, "zone-1", "Ward 12", apperr.ErrRoleMismatch},
		{"admin as citizen", admin, session.AccessCitizen, "zone-1", "Ward 12", apperr.ErrRoleMismatch},
		{"pending officer", pending, session.AccessStaff, "", "", apperr.ErrAccountPending},
		{"officer without status", unset, session.AccessStaff, "", "", apperr.ErrAccountPending},
		{"rejected officer", rejected, session.AccessStaff, "", "", apperr.ErrAccountRejected},
		{"approved officer", approved, session.AccessStaff, "", "", nil},
		{"admin", admin, session.AccessStaff, "", "", nil},
		{"wrong zone", citizen, session.AccessCitizen, "zone-2", "Ward 12", apperr.ErrZoneWardMismatch},
		{"wrong ward", citizen, session.AccessCitizen, "zone-1", "Ward 13", apperr.ErrZoneWardMismatch},
		{"zone derived from ward", legacy, session.AccessCitizen, "zone-2", "Ward 30", nil},
		{"derived zone mismatch", legacy, session.AccessCitizen, "zone-1", "Ward 30", apperr.ErrZoneWardMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := session.CheckAccess(dir, tt.acct, tt.access, tt.zone, tt.ward)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		cred   session.Credential
		fields []string
	}{
		{"missing both", session.Credential{AccessType: "officer"}, []string{"email", "password"}},
		{"missing password", session.Credential{Email: "a@b.co", AccessType: "officer"}, []string{"password"}},
		{"bad access type", session.Credential{Email: "a@b.co", Password: "x", AccessType: "guest"}, []string{"accessType"}},
		{"citizen without ward", session.Credential{Email: "a@b.co", Password: "x", AccessType: "user", ZoneID: "zone-1"}, []string{"ward"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.guard.Login(context.Background(), tt.cred)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("got %v, want validation", err)
			}
			got := apperr.FieldsOf(err)
			if len(got) != len(tt.fields) {
				t.Fatalf("fields = %v, want %v", got, tt.fields)
			}
			for i := range got {
				if got[i] != tt.fields[i] {
					t.Errorf("fields = %v, want %v", got, tt.fields)
				}
			}
		})
	}
}

func TestLoginCitizen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "meena@example.com", &models.Account{Role: models.RoleCitizen, ZoneID: "zone-1", Ward: "Ward 12"})

	s, err := f.guard.Login(ctx, session.Credential{
		Email: "Meena@Example.com", Password: "secret1", AccessType: "user", ZoneID: "zone-1", Ward: "Ward 12",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	acct, ok := s.Account()
	if !ok || acct.ID != uid || acct.Role != models.RoleCitizen {
		t.Errorf("session account = %+v", acct)
	}
	if f.store.Len() != 1 {
		t.Errorf("session not saved")
	}

	_, err = f.guard.Login(ctx, session.Credential{
		Email: "meena@example.com", Password: "secret1", AccessType: "officer",
	})
	if !errors.Is(err, apperr.ErrRoleMismatch) {
		t.Errorf("citizen as officer: %v", err)
	}

	_, err = f.guard.Login(ctx, session.Credential{
		Email: "meena@example.com", Password: "wrong-password", AccessType: "user", ZoneID: "zone-1", Ward: "Ward 12",
	})
	if apperr.CodeOf(err) != authprovider.CodeInvalidCredential {
		t.Errorf("wrong password code = %q", apperr.CodeOf(err))
	}
}

func TestLoginProfileMissing(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ghost@example.com", nil)
	_, err := f.guard.Login(context.Background(), session.Credential{
		Email: "ghost@example.com", Password: "secret1", AccessType: "officer",
	})
	if !errors.Is(err, apperr.ErrProfileMissing) {
		t.Errorf("got %v, want profile missing", err)
	}
	if f.store.Len() != 0 {
		t.Errorf("no session should be saved")
	}
}

func TestLoginOfficerAdmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "ravi@example.com", &models.Account{Role: models.RoleOfficer, Ward: "Ward 12"})
	cred := session.Credential{Email: "ravi@example.com", Password: "secret1", AccessType: "officer"}

	if _, err := f.guard.Login(ctx, cred); !errors.Is(err, apperr.ErrAccountPending) {
		t.Fatalf("pending login: %v", err)
	}
	if err := f.accounts.SetStatus(ctx, uid, models.AdmissionApproved); err != nil {
		t.Fatal(err)
	}
	if _, err := f.guard.Login(ctx, cred); err != nil {
		t.Fatalf("approved login: %v", err)
	}
}

func TestRestoreAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "ravi@example.com", &models.Account{
		Role: models.RoleOfficer, Ward: "Ward 12", Status: models.AdmissionApproved,
	})
	s, err := f.guard.Login(ctx, session.Credential{Email: "ravi@example.com", Password: "secret1", AccessType: "staff"})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.accounts.UpdateProfile(ctx, uid, accountstore.ProfileUpdate{Name: ptr("Ravi K")}); err != nil {
		t.Fatal(err)
	}
	restored, err := f.guard.Restore(ctx, s.ID)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if acct, _ := restored.Account(); acct.Name != "Ravi K" {
		t.Errorf("Restore should refresh the account, got name %q", acct.Name)
	}

	f.guard.Logout(ctx, restored)
	if _, ok := restored.Account(); ok {
		t.Error("Logout should clear the session")
	}
	if _, err := f.guard.Restore(ctx, s.ID); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Restore after Logout: %v", err)
	}
	if _, err := f.auth.Verify(ctx, s.Identity.Token); apperr.CodeOf(err) != authprovider.CodeTokenExpired {
		t.Errorf("token should be revoked, got %v", err)
	}
}

func TestRestoreDropsRejectedOfficer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "ravi@example.com", &models.Account{
		Role: models.RoleOfficer, Ward: "Ward 12", Status: models.AdmissionApproved,
	})
	s, err := f.guard.Login(ctx, session.Credential{Email: "ravi@example.com", Password: "secret1", AccessType: "officer"})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.accounts.SetStatus(ctx, uid, models.AdmissionRejected); err != nil {
		t.Fatal(err)
	}
	if _, err := f.guard.Restore(ctx, s.ID); !errors.Is(err, apperr.ErrAccountRejected) {
		t.Errorf("Restore: %v", err)
	}
	if f.store.Len() != 0 {
		t.Error("session should be removed")
	}
}

func TestRestoreUnknown(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"", "nope"} {
		if _, err := f.guard.Restore(context.Background(), id); !errors.Is(err, session.ErrNoSession) {
			t.Errorf("Restore(%q): %v", id, err)
		}
	}
}

func ptr(s string) *string { return &s }
