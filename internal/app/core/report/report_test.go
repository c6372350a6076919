package report_test

import (
	"testing"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/domain/models"
)

func complaintIn(id, ward string, status models.ComplaintStatus, officer string) models.Complaint {
	return models.Complaint{ID: id, Ward: ward, Status: status, AssignedOfficerID: officer}
}

func officerIn(id, name, ward string, status models.AdmissionStatus) models.Account {
	return models.Account{ID: id, Role: models.RoleOfficer, Name: name, Ward: ward, Status: status}
}

var sample = []models.Complaint{
	complaintIn("c6", "Ward 12", models.StatusPending, ""),
	complaintIn("c5", "Ward 12", models.StatusInProgress, "o1"),
	complaintIn("c4", "Ward 12", models.StatusResolved, "o1"),
	complaintIn("c3", "Ward 30", models.StatusPending, "o1"),
	complaintIn("c2", "Ward 30", models.StatusResolved, "o2"),
	complaintIn("c1", "Ward 5", "Closed", ""),
}

func TestCompute(t *testing.T) {
	got := report.Compute(sample)
	want := report.Stats{Total: 6, Pending: 2, InProgress: 1, Resolved: 2, Assigned: 4}
	if got != want {
		t.Errorf("Compute = %+v, want %+v", got, want)
	}
	if (report.Compute(nil) != report.Stats{}) {
		t.Error("empty input should give zero stats")
	}
}

func TestOfficerPerformance(t *testing.T) {
	officers := []models.Account{
		officerIn("o3", "", "Ward 5", models.AdmissionApproved),
		officerIn("o2", "Selvi", "Ward 30", models.AdmissionApproved),
		officerIn("o4", "Pending", "Ward 12", models.AdmissionPending),
		officerIn("o1", "Ravi", "Ward 12", models.AdmissionApproved),
		officerIn("o5", "Rejected", "Ward 30", models.AdmissionRejected),
		officerIn("o6", "Kavin", "Ward 99", models.AdmissionApproved),
	}
	rows := report.OfficerPerformance(officers, sample)

	wantIDs := []string{"o1", "o2", "o3", "o6"}
	if len(rows) != len(wantIDs) {
		t.Fatalf("rows = %+v", rows)
	}
	for i, id := range wantIDs {
		if rows[i].OfficerID != id {
			t.Errorf("rows[%d] = %s, want %s", i, rows[i].OfficerID, id)
		}
	}

	ravi := rows[0]
	if ravi.ActivelyHandled != 3 || ravi.Total != 3 || ravi.Pending != 1 || ravi.InProgress != 1 || ravi.Resolved != 1 {
		t.Errorf("Ravi = %+v", ravi)
	}
	selvi := rows[1]
	if selvi.ActivelyHandled != 1 || selvi.Total != 2 || selvi.Pending != 1 || selvi.Resolved != 1 {
		t.Errorf("Selvi = %+v", selvi)
	}
	if rows[2].Name != "Unnamed Officer" || rows[2].Total != 1 || rows[2].Pending != 0 {
		t.Errorf("unnamed = %+v", rows[2])
	}
	if rows[3].Total != 0 || rows[3].ActivelyHandled != 0 {
		t.Errorf("idle officer = %+v", rows[3])
	}
}

func TestUnassignedAndLatest(t *testing.T) {
	un := report.Unassigned(sample)
	if len(un) != 2 || un[0].ID != "c6" || un[1].ID != "c1" {
		t.Errorf("Unassigned = %+v", un)
	}
	if got := report.Unassigned(nil); got == nil || len(got) != 0 {
		t.Errorf("Unassigned(nil) = %#v", got)
	}

	tests := []struct {
		n    int
		want int
	}{{0, 0}, {-1, 0}, {3, 3}, {8, 6}}
	for _, tt := range tests {
		got := report.Latest(sample, tt.n)
		if len(got) != tt.want {
			t.Errorf("Latest(%d) = %d items, want %d", tt.n, len(got), tt.want)
		}
		if tt.want > 0 && got[0].ID != "c6" {
			t.Errorf("Latest(%d) should start with the newest", tt.n)
		}
	}

	latest := report.Latest(sample, 2)
	latest[0].ID = "changed"
	if sample[0].ID != "c6" {
		t.Error("Latest should copy")
	}
}

func TestBuild(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := report.Build([]models.Account{officerIn("o1", "Ravi", "Ward 12", models.AdmissionApproved)}, sample, report.DefaultLatest, at)
	if snap.Stats.Total != 6 || len(snap.Officers) != 1 || len(snap.Unassigned) != 2 || len(snap.Latest) != 6 || !snap.GeneratedAt.Equal(at) {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestExportRows(t *testing.T) {
	lat, lng := 9.92, 78.12
	created := time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC)
	assigned := created.Add(90 * time.Minute)
	rows := report.ExportRows([]models.Complaint{
		{
			ID: "c1", Ward: "Ward 12", Category: models.CategoryGarbage, Description: "overflowing garbage bin",
			Status: models.StatusInProgress, AIVerified: true, AssignedOfficerName: "Ravi",
			Latitude: &lat, Longitude: &lng, ImageURL: "https://cdn.example.com/a.jpg",
			CreatedAt: created, AssignedAt: &assigned,
		},
		{ID: "c2", Ward: "Ward 3", Status: models.StatusPending},
	})
	want := report.Row{
		ID: "c1", Ward: "Ward 12", Category: "Garbage Accumulation", Description: "overflowing garbage bin",
		Status: "In Progress", AIVerified: "Yes", AssignedOfficer: "Ravi", Latitude: "9.92", Longitude: "78.12",
		ImageURL: "https://cdn.example.com/a.jpg", CreatedAt: "01 Mar 2025, 10:00", AssignedAt: "01 Mar 2025, 11:30",
	}
	if rows[0] != want {
		t.Errorf("row = %+v\nwant  %+v", rows[0], want)
	}
	if r := rows[1]; r.AIVerified != "No" || r.Latitude != "" || r.CreatedAt != "—" || r.AssignedAt != "—" || r.AssignedOfficer != "" {
		t.Errorf("sparse row = %+v", r)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]report.Strategy{"": report.StrategyPoll, "poll": report.StrategyPoll, "subscribe": report.StrategySubscribe} {
		got, err := report.ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := report.ParseStrategy("push"); err == nil {
		t.Error("unknown strategy should fail")
	}
}
