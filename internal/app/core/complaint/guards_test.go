package complaint_test

import (
	"errors"
	"math"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
)

func TestCanAdvance(t *testing.T) {
	p, ip, r := models.StatusPending, models.StatusInProgress, models.StatusResolved
	tests := []struct {
		current, target models.ComplaintStatus
		noop            bool
		want            error
	}{
		{p, ip, false, nil},
		{p, r, false, nil},
		{ip, r, false, nil},
		{p, p, true, nil},
		{ip, ip, true, nil},
		{r, r, true, nil},
		{ip, p, false, apperr.ErrInvalidTransition},
		{r, p, false, apperr.ErrInvalidTransition},
		{r, ip, false, apperr.ErrInvalidTransition},
		{"", ip, false, nil},
		{p, "Closed", false, apperr.ErrValidation},
	}
	for _, tt := range tests {
		res := complaint.CanAdvance(complaint.AdvanceContext{ComplaintID: "c1", Current: tt.current, Target: tt.target})
		if tt.want == nil {
			if !res.Allowed || res.NoOp != tt.noop {
				t.Errorf("%q -> %q = %+v, want allowed noop=%v", tt.current, tt.target, res, tt.noop)
			}
			continue
		}
		if res.Allowed || !errors.Is(res.Error(), tt.want) {
			t.Errorf("%q -> %q = %+v, want %v", tt.current, tt.target, res, tt.want)
		}
	}
}

// No target earlier than the current status is ever allowed.
func TestCanAdvanceNeverBackward(t *testing.T) {
	for i, from := range models.Statuses {
		for j, to := range models.Statuses {
			res := complaint.CanAdvance(complaint.AdvanceContext{Current: from, Target: to})
			if j < i && res.Allowed {
				t.Errorf("%s -> %s allowed", from, to)
			}
			if j >= i && !res.Allowed {
				t.Errorf("%s -> %s denied: %v", from, to, res.Error())
			}
		}
	}
}

func TestCanTriage(t *testing.T) {
	tests := []struct {
		name    string
		ctx     complaint.TriageContext
		allowed bool
	}{
		{"admin anywhere", complaint.TriageContext{ActorRole: models.RoleAdmin, ComplaintWard: "Ward 40"}, true},
		{"officer own ward", complaint.TriageContext{ActorID: "o1", ActorRole: models.RoleOfficer, ActorWard: "Ward 12", ComplaintWard: "Ward 12"}, true},
		{"officer assigned elsewhere", complaint.TriageContext{ActorID: "o1", ActorRole: models.RoleOfficer, ActorWard: "Ward 12", ComplaintWard: "Ward 40", AssignedOfficerID: "o1"}, true},
		{"officer other ward", complaint.TriageContext{ActorID: "o1", ActorRole: models.RoleOfficer, ActorWard: "Ward 12", ComplaintWard: "Ward 40", AssignedOfficerID: "o2"}, false},
		{"officer without ward", complaint.TriageContext{ActorID: "o1", ActorRole: models.RoleOfficer}, false},
		{"citizen", complaint.TriageContext{ActorID: "c1", ActorRole: models.RoleCitizen, ActorWard: "Ward 12", ComplaintWard: "Ward 12"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := complaint.CanTriage(tt.ctx)
			if res.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", res.Allowed, tt.allowed)
			}
			if !tt.allowed && !errors.Is(res.Error(), apperr.ErrForbidden) {
				t.Errorf("error = %v", res.Error())
			}
		})
	}
}

// Assigning to anything other than an approved officer fails with
// OfficerNotEligible, whatever role or status the account has.
func TestCanAssignEligibility(t *testing.T) {
	statuses := []models.AdmissionStatus{"", models.AdmissionPending, models.AdmissionApproved, models.AdmissionRejected, "suspended"}
	for _, role := range models.Roles {
		for _, st := range statuses {
			officer := models.Account{ID: "x", Role: role, Status: st}
			res := complaint.CanAssign(complaint.AssignContext{
				ActorRole: models.RoleAdmin, OfficerID: "x", OfficerFound: true, Officer: officer,
			})
			eligible := role == models.RoleOfficer && st == models.AdmissionApproved
			if res.Allowed != eligible {
				t.Errorf("role=%s status=%q allowed=%v", role, st, res.Allowed)
			}
			if !eligible && !errors.Is(res.Error(), apperr.ErrOfficerNotEligible) {
				t.Errorf("role=%s status=%q error=%v", role, st, res.Error())
			}
		}
	}

	res := complaint.CanAssign(complaint.AssignContext{ActorRole: models.RoleAdmin, OfficerID: "gone"})
	if !errors.Is(res.Error(), apperr.ErrOfficerNotEligible) {
		t.Errorf("absent officer: %v", res.Error())
	}
	res = complaint.CanAssign(complaint.AssignContext{
		ActorRole: models.RoleOfficer, OfficerFound: true,
		Officer: models.Account{Role: models.RoleOfficer, Status: models.AdmissionApproved},
	})
	if !errors.Is(res.Error(), apperr.ErrForbidden) {
		t.Errorf("officer assigning: %v", res.Error())
	}
}

func f64(v float64) *float64 { return &v }

func TestValidateSubmission(t *testing.T) {
	dir := zones.Default()
	valid := complaint.Submission{
		Category:    "garbage accumulation",
		Description: "overflowing garbage bin",
		ZoneID:      "zone-1",
		Ward:        "Ward 12",
		Latitude:    f64(9.92),
		Longitude:   f64(78.12),
	}

	v, err := complaint.ValidateSubmission(dir, valid)
	if err != nil {
		t.Fatalf("valid submission: %v", err)
	}
	if v.Zone.ID != "zone-1" || v.Category != models.CategoryGarbage || v.Ward != "Ward 12" {
		t.Errorf("validated = %+v", v)
	}

	tests := []struct {
		name   string
		mutate func(*complaint.Submission)
		fields []string
	}{
		{"empty description", func(s *complaint.Submission) { s.Description = "   " }, []string{"description"}},
		{"markup only description", func(s *complaint.Submission) { s.Description = "<b></b>" }, []string{"description"}},
		{"missing ward", func(s *complaint.Submission) { s.Ward = "" }, []string{"ward"}},
		{"unknown ward", func(s *complaint.Submission) { s.Ward = "Ward 400" }, []string{"ward"}},
		{"ward outside zone", func(s *complaint.Submission) { s.ZoneID = "zone-2" }, []string{"zoneId"}},
		{"missing coordinates", func(s *complaint.Submission) { s.Latitude, s.Longitude = nil, nil }, []string{"latitude", "longitude"}},
		{"latitude out of range", func(s *complaint.Submission) { s.Latitude = f64(91) }, []string{"latitude"}},
		{"longitude NaN", func(s *complaint.Submission) { s.Longitude = f64(math.NaN()) }, []string{"longitude"}},
		{"unknown category", func(s *complaint.Submission) { s.Category = "Noise" }, []string{"category"}},
		{"everything missing", func(s *complaint.Submission) { *s = complaint.Submission{} }, []string{"description", "ward", "latitude", "longitude"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.mutate(&sub)
			_, err := complaint.ValidateSubmission(dir, sub)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("got %v, want validation", err)
			}
			got := apperr.FieldsOf(err)
			if len(got) != len(tt.fields) {
				t.Fatalf("fields = %v, want %v", got, tt.fields)
			}
			for i := range got {
				if got[i] != tt.fields[i] {
					t.Fatalf("fields = %v, want %v", got, tt.fields)
				}
			}
		})
	}

	sub := valid
	sub.Category = ""
	sub.ZoneID = ""
	sub.Ward = "12"
	v, err = complaint.ValidateSubmission(dir, sub)
	if err != nil || v.Category != models.DefaultCategory || v.Zone.ID != "zone-1" || v.Ward != "Ward 12" {
		t.Errorf("defaults: %+v, %v", v, err)
	}
}
