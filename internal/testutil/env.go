package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/core/admission"
	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	complaintstore "github.com/dalemusser/wardwatch/internal/app/store/complaints"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Password is the credential every seeded account signs in with.
const Password = "secret1"

// Env is a complete in-memory wiring of the engine for handler tests.
type Env struct {
	Docs       *docstore.MemoryStore
	Auth       *authprovider.Provider
	Accounts   *accountstore.Store
	Complaints *complaintstore.Store
	AuditStore *audit.Store
	Zones      *zones.Directory
	Blobs      *blobstore.Memory
	Sessions   *session.Memory

	Guard        *session.Guard
	SessionMgr   *auth.SessionManager
	AuditLog     *auditlog.Logger
	Complaint    *complaint.Service
	Admission    *admission.Service
	Registration *registration.Service
	Log          *zap.Logger
}

// NewEnv wires every service over a fresh in-memory document store.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	log := zap.NewNop()
	ds := docstore.NewMemory()
	provider, err := authprovider.New(ds, authprovider.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		BcryptCost: bcrypt.MinCost,
	}, log)
	if err != nil {
		t.Fatalf("authprovider: %v", err)
	}

	e := &Env{
		Docs:       ds,
		Auth:       provider,
		Accounts:   accountstore.New(ds),
		Complaints: complaintstore.New(ds),
		AuditStore: audit.New(ds),
		Zones:      zones.Default(),
		Blobs:      blobstore.NewMemory(),
		Sessions:   session.NewMemory(),
		Log:        log,
	}
	e.Guard = &session.Guard{
		Auth:     provider,
		Accounts: e.Accounts,
		Zones:    e.Zones,
		Store:    e.Sessions,
		Log:      log,
	}
	e.SessionMgr, err = auth.NewSessionManager("test-session-key-must-be-32-chars-long", "wardwatch-test", "", 24*time.Hour, false, e.Guard, log)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	e.AuditLog = auditlog.New(e.AuditStore, log, auditlog.Config{})
	e.Complaint = &complaint.Service{
		Complaints: e.Complaints,
		Accounts:   e.Accounts,
		Zones:      e.Zones,
		Blobs:      e.Blobs,
		Log:        log,
	}
	e.Admission = admission.New(e.Accounts, log)
	e.Registration = &registration.Service{
		Auth:     provider,
		Accounts: e.Accounts,
		Zones:    e.Zones,
		Blobs:    e.Blobs,
		Log:      log,
	}
	return e
}

// Seed creates a credential for acct.Email with Password and stores the
// profile under the issued id.
func (e *Env) Seed(t *testing.T, acct models.Account) models.Account {
	t.Helper()
	ctx := context.Background()
	id, err := e.Auth.SignUp(ctx, acct.Email, Password)
	if err != nil {
		t.Fatalf("SignUp(%s): %v", acct.Email, err)
	}
	acct.ID = id.UID
	if _, err := e.Accounts.Create(ctx, acct); err != nil {
		t.Fatalf("Create(%s): %v", acct.Email, err)
	}
	got, err := e.Accounts.GetByID(ctx, acct.ID)
	if err != nil {
		t.Fatalf("GetByID(%s): %v", acct.ID, err)
	}
	return got
}

// Citizen seeds a citizen of zone-1 / Ward 12.
func (e *Env) Citizen(t *testing.T, email string) models.Account {
	t.Helper()
	return e.Seed(t, models.Account{Email: email, Role: models.RoleCitizen, Name: "Citizen " + email, ZoneID: "zone-1", Ward: "Ward 12"})
}

// Officer seeds an officer of ward with the given admission status.
func (e *Env) Officer(t *testing.T, email, name, ward string, status models.AdmissionStatus) models.Account {
	t.Helper()
	return e.Seed(t, models.Account{Email: email, Role: models.RoleOfficer, Name: name, Ward: ward, Status: status})
}

// Admin seeds an administrator.
func (e *Env) Admin(t *testing.T, email string) models.Account {
	t.Helper()
	return e.Seed(t, models.Account{Email: email, Role: models.RoleAdmin, Name: "Admin"})
}

// SubmitComplaint submits a Ward 12 complaint as reporter.
func (e *Env) SubmitComplaint(t *testing.T, reporter models.Account, description string) models.Complaint {
	t.Helper()
	lat, lng := 11.0168, 76.9558
	c, err := e.Complaint.Submit(context.Background(), reporter, complaint.Submission{
		Description: description,
		ZoneID:      "zone-1",
		Ward:        "Ward 12",
		Latitude:    &lat,
		Longitude:   &lng,
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return c
}
