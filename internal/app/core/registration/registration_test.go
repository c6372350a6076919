package registration_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	svc      *registration.Service
	auth     *authprovider.Provider
	accounts *accountstore.Store
	blobs    *blobstore.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ds := docstore.NewMemory()
	auth, err := authprovider.New(ds, authprovider.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		BcryptCost: bcrypt.MinCost,
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	e := &env{auth: auth, accounts: accountstore.New(ds), blobs: blobstore.NewMemory()}
	e.svc = &registration.Service{
		Auth:     auth,
		Accounts: e.accounts,
		Zones:    zones.Default(),
		Blobs:    e.blobs,
		Log:      zap.NewNop(),
	}
	return e
}

func TestRegisterCitizen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acct, err := e.svc.Register(ctx, registration.Request{
		Email: " Meena@Example.com", Password: "secret1", Role: "user",
		Name: "Meena", ZoneID: "zone-1", Ward: "12",
	}, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acct.Role != models.RoleCitizen || acct.Ward != "Ward 12" || acct.ZoneName != "Zone 1 - Arasaradi Zone" || acct.Status != "" {
		t.Errorf("account = %+v", acct)
	}
	if _, err := e.auth.SignIn(ctx, "meena@example.com", "secret1"); err != nil {
		t.Errorf("credential should exist: %v", err)
	}

	_, err = e.svc.Register(ctx, registration.Request{
		Email: "meena@example.com", Password: "secret1", Name: "Meena", ZoneID: "zone-1", Ward: "12",
	}, nil)
	if apperr.CodeOf(err) != authprovider.CodeEmailInUse {
		t.Errorf("duplicate email code = %q", apperr.CodeOf(err))
	}
}

func TestRegisterOfficerWithBadge(t *testing.T) {
	e := newEnv(t)
	badge := &blobstore.File{Filename: "id card.pdf", ContentType: "application/pdf", Body: strings.NewReader("pdf")}
	acct, err := e.svc.Register(context.Background(), registration.Request{
		Email: "ravi@example.com", Password: "secret1", Role: "officer", Name: "Ravi", Ward: "Ward 30",
	}, badge)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acct.Status != models.AdmissionPending || acct.ZoneID != "zone-2" {
		t.Errorf("officer = %+v", acct)
	}
	if !strings.HasPrefix(acct.BadgeURL, "badges/"+acct.ID+"/") || !strings.HasSuffix(acct.BadgeURL, "-id_card.pdf") {
		t.Errorf("badge ref = %q", acct.BadgeURL)
	}
	if e.blobs.Len() != 1 {
		t.Errorf("badge not uploaded")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		req    registration.Request
		fields []string
	}{
		{"no credentials", registration.Request{Role: "user"}, []string{"email", "password"}},
		{"admin role", registration.Request{Email: "a@b.co", Password: "secret1", Role: "admin"}, []string{"role"}},
		{"unknown role", registration.Request{Email: "a@b.co", Password: "secret1", Role: "mayor"}, []string{"role"}},
		{"citizen missing all", registration.Request{Email: "a@b.co", Password: "secret1", Role: "citizen"}, []string{"name", "zoneId", "ward"}},
		{"citizen ward outside zone", registration.Request{Email: "a@b.co", Password: "secret1", Name: "A", ZoneID: "zone-2", Ward: "Ward 12"}, []string{"ward"}},
		{"officer without ward", registration.Request{Email: "a@b.co", Password: "secret1", Role: "officer"}, []string{"ward"}},
		{"officer unknown ward", registration.Request{Email: "a@b.co", Password: "secret1", Role: "officer", Ward: "Ward 101"}, []string{"ward"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.svc.Register(context.Background(), tt.req, nil)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("got %v, want validation", err)
			}
			if got := apperr.FieldsOf(err); strings.Join(got, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
			if _, err := e.auth.UIDFor(context.Background(), "a@b.co"); err == nil {
				t.Error("no credential should be created for invalid input")
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	acct, promoted, err := e.svc.EnsureAdmin(ctx, "admin@example.com", "adminpass", "City Admin")
	if err != nil || promoted || acct.Role != models.RoleAdmin {
		t.Fatalf("create admin = %+v, %v, %v", acct, promoted, err)
	}
	again, promoted, err := e.svc.EnsureAdmin(ctx, "admin@example.com", "newpass1", "")
	if err != nil || promoted || again.ID != acct.ID {
		t.Errorf("repeat = %+v, %v, %v", again, promoted, err)
	}
	if _, err := e.auth.SignIn(ctx, "admin@example.com", "newpass1"); err != nil {
		t.Errorf("password should be replaced: %v", err)
	}

	officer, err := e.svc.Register(ctx, registration.Request{
		Email: "ravi@example.com", Password: "secret1", Role: "officer", Ward: "Ward 5",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, promoted, err := e.svc.EnsureAdmin(ctx, "ravi@example.com", "secret2", "")
	if err != nil || !promoted || got.ID != officer.ID || got.Role != models.RoleAdmin || got.Ward != "" || got.Status != "" {
		t.Errorf("promote = %+v, %v, %v", got, promoted, err)
	}
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acct, err := e.svc.Register(ctx, registration.Request{
		Email: "meena@example.com", Password: "secret1", Name: "Meena", ZoneID: "zone-1", Ward: "Ward 3",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	phone := " 98765 43210 "
	photo := &blobstore.File{Filename: "me.png", ContentType: "image/png", Body: strings.NewReader("png")}
	got, err := e.svc.UpdateProfile(ctx, acct, registration.ProfileInput{Phone: &phone}, photo)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Phone != "98765 43210" || got.Name != "Meena" || got.PhotoURL != "mem://profiles/"+acct.ID {
		t.Errorf("profile = %+v", got)
	}
	if got.Ward != "Ward 3" || got.Role != models.RoleCitizen {
		t.Errorf("scope fields changed: %+v", got)
	}

	empty := "  "
	if _, err := e.svc.UpdateProfile(ctx, acct, registration.ProfileInput{Name: &empty}, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty citizen name: %v", err)
	}
	if _, err := e.svc.Profile(ctx, models.Account{}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("anonymous profile: %v", err)
	}
}
