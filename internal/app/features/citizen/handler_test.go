package citizen_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/app/features/citizen"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/dalemusser/wardwatch/internal/testutil"
)

func router(env *testutil.Env) http.Handler {
	return citizen.Routes(citizen.NewHandler(env.Complaint, env.Log), env.SessionMgr)
}

func TestSubmit_JSON(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Citizen(t, "asha@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/complaints", map[string]any{
		"category":    "Sewage Blockage",
		"description": "Sewage overflowing near the temple",
		"zoneId":      "zone-1",
		"ward":        "Ward 12",
		"latitude":    9.9252,
		"longitude":   78.1198,
	})
	rec := testutil.NewRecorder()
	router(env).ServeHTTP(rec, testutil.WithAccount(req, c))
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Complaint
	rec.DecodeJSON(t, &got)
	if got.ID == "" || got.Status != models.StatusPending || got.UserID != c.ID || !got.AIVerified {
		t.Errorf("complaint = %+v", got)
	}
	if got.Category != models.CategorySewage || got.ZoneName == "" {
		t.Errorf("category/zone = %q/%q", got.Category, got.ZoneName)
	}
}

func TestSubmit_MultipartWithPhoto(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Citizen(t, "asha@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"description": "Overflowing bins",
		"zoneId":      "zone-1",
		"ward":        "12",
		"latitude":    "9.9252",
		"longitude":   "78.1198",
	} {
		_ = mw.WriteField(k, v)
	}
	fw, _ := mw.CreateFormFile("image", "bins.jpg")
	_, _ = fw.Write([]byte("jpeg"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/complaints", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := testutil.NewRecorder()
	router(env).ServeHTTP(rec, testutil.WithAccount(req, c))
	rec.AssertStatus(t, http.StatusCreated)

	var got models.Complaint
	rec.DecodeJSON(t, &got)
	if !strings.HasPrefix(got.ImageURL, "mem://complaints/"+c.ID+"/") {
		t.Errorf("imageUrl = %q", got.ImageURL)
	}
	if got.Category != models.DefaultCategory || got.AIVerified {
		t.Errorf("category %q aiVerified %v", got.Category, got.AIVerified)
	}
	if env.Blobs.Len() != 1 {
		t.Errorf("stored blobs = %d", env.Blobs.Len())
	}
}

func TestSubmit_Invalid(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Citizen(t, "asha@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/complaints", map[string]any{
		"description": "   ",
		"zoneId":      "zone-1",
		"ward":        "Ward 12",
	})
	rec := testutil.NewRecorder()
	router(env).ServeHTTP(rec, testutil.WithAccount(req, c))
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	var body respond.ErrorBody
	rec.DecodeJSON(t, &body)
	if body.Error != "Zone, ward, description, and map location are required." {
		t.Errorf("message = %q", body.Error)
	}
	if list, _ := env.Complaints.All(req.Context()); len(list) != 0 {
		t.Errorf("stored complaints = %d", len(list))
	}
}

func TestDashboard(t *testing.T) {
	env := testutil.NewEnv(t)
	asha := env.Citizen(t, "asha@example.com")
	other := env.Citizen(t, "bala@example.com")
	env.SubmitComplaint(t, asha, "garbage piling up")
	env.SubmitComplaint(t, asha, "broken drain cover")
	env.SubmitComplaint(t, other, "stray dogs")

	rec := testutil.NewRecorder()
	router(env).ServeHTTP(rec, testutil.WithAccount(httptest.NewRequest(http.MethodGet, "/", nil), asha))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Stats      report.Stats       `json:"stats"`
		Complaints []models.Complaint `json:"complaints"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Stats.Total != 2 || resp.Stats.Pending != 2 || len(resp.Complaints) != 2 {
		t.Errorf("dashboard = %+v", resp)
	}
	for _, c := range resp.Complaints {
		if c.UserID != asha.ID {
			t.Errorf("foreign complaint %s in dashboard", c.ID)
		}
	}
}

func TestArea_OtherRolesRedirected(t *testing.T) {
	env := testutil.NewEnv(t)
	officer := env.Officer(t, "ravi@example.com", "Ravi", "Ward 12", models.AdmissionApproved)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := testutil.NewRecorder()
	router(env).ServeHTTP(rec, testutil.WithAccount(req, officer))
	rec.AssertRedirect(t, "/officer")
}
