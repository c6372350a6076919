package login_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/features/login"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/dalemusser/wardwatch/internal/testutil"
)

func post(t *testing.T, env *testutil.Env, body map[string]string) *testutil.ResponseRecorder {
	t.Helper()
	h := login.NewHandler(env.Guard, env.SessionMgr, env.AuditLog, env.Log)
	rec := testutil.NewRecorder()
	login.Routes(h).ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/", body))
	return rec
}

func TestLogin_Citizen(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Citizen(t, "asha@example.com")

	rec := post(t, env, map[string]string{
		"email": "asha@example.com", "password": testutil.Password,
		"accessType": "user", "zoneId": "zone-1", "ward": "12",
	})
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Account  models.Account `json:"account"`
		Redirect string         `json:"redirect"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Account.ID != c.ID || resp.Redirect != "/citizen" {
		t.Errorf("response = %+v", resp)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
	if env.Sessions.Len() != 1 {
		t.Errorf("stored sessions = %d, want 1", env.Sessions.Len())
	}

	events, err := env.AuditStore.GetRecent(context.Background(), 10)
	if err != nil || len(events) != 1 || events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("audit = %+v, %v", events, err)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Citizen(t, "asha@example.com")
	env.Officer(t, "ravi@example.com", "Ravi", "Ward 12", models.AdmissionPending)
	env.Officer(t, "selvi@example.com", "Selvi", "Ward 12", models.AdmissionRejected)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{"wrong password",
			map[string]string{"email": "asha@example.com", "password": "nope-nope", "accessType": "user", "zoneId": "zone-1", "ward": "Ward 12"},
			http.StatusUnauthorized, "Invalid email or password."},
		{"citizen on staff side",
			map[string]string{"email": "asha@example.com", "password": testutil.Password, "accessType": "officer"},
			http.StatusForbidden, "This account belongs to a citizen. Choose Public access type."},
		{"wrong ward",
			map[string]string{"email": "asha@example.com", "password": testutil.Password, "accessType": "user", "zoneId": "zone-1", "ward": "Ward 3"},
			http.StatusForbidden, "Selected ward does not match your registered profile."},
		{"pending officer",
			map[string]string{"email": "ravi@example.com", "password": testutil.Password, "accessType": "officer"},
			http.StatusForbidden, "Your officer account is awaiting admin approval."},
		{"rejected officer",
			map[string]string{"email": "selvi@example.com", "password": testutil.Password, "accessType": "officer"},
			http.StatusForbidden, "Your officer registration was rejected. Contact the administrator."},
		{"missing fields",
			map[string]string{"email": "", "password": "", "accessType": "user"},
			http.StatusUnprocessableEntity, "Email and password are required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, env, tt.body)
			rec.AssertStatus(t, tt.wantStatus)
			var body respond.ErrorBody
			rec.DecodeJSON(t, &body)
			if body.Error != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Error, tt.wantMsg)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("no cookie expected on failure")
			}
		})
	}
	if env.Sessions.Len() != 0 {
		t.Errorf("stored sessions = %d, want 0", env.Sessions.Len())
	}
}
