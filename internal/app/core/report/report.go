// Package report derives dashboard statistics from complaint and officer
// snapshots. Every function here is pure over its inputs; Loader and
// Refresher fetch the inputs and decide when to recompute.
package report

import (
	"sort"
	"time"

	"github.com/dalemusser/wardwatch/internal/domain/models"
)

// DefaultLatest is how many complaints the admin overview lists.
const DefaultLatest = 8

// Stats are the global complaint counts.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Assigned   int `json:"assigned"`
}

// Compute counts complaints by status and assignment. Complaints with an
// unrecognized status count toward Total only.
func Compute(complaints []models.Complaint) Stats {
	s := Stats{Total: len(complaints)}
	for _, c := range complaints {
		switch c.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusResolved:
			s.Resolved++
		}
		if c.Assigned() {
			s.Assigned++
		}
	}
	return s
}

// OfficerRow is one officer's workload. The status counts cover every
// complaint in the officer's ward; ActivelyHandled counts complaints
// assigned to the officer personally.
type OfficerRow struct {
	OfficerID       string `json:"officerId"`
	Name            string `json:"name"`
	Ward            string `json:"ward"`
	Phone           string `json:"phone"`
	Pending         int    `json:"pending"`
	InProgress      int    `json:"inProgress"`
	Resolved        int    `json:"resolved"`
	Total           int    `json:"total"`
	ActivelyHandled int    `json:"activelyHandled"`
}

// OfficerPerformance builds a row per approved officer, ordered by
// ActivelyHandled descending. Ties keep the order officers were given in.
// Officers in any other admission state are left out.
func OfficerPerformance(officers []models.Account, complaints []models.Complaint) []OfficerRow {
	rows := make([]OfficerRow, 0, len(officers))
	for _, o := range officers {
		if !o.Eligible() {
			continue
		}
		row := OfficerRow{OfficerID: o.ID, Name: o.Name, Ward: o.Ward, Phone: o.Phone}
		if row.Name == "" {
			row.Name = "Unnamed Officer"
		}
		for _, c := range complaints {
			if c.AssignedOfficerID == o.ID {
				row.ActivelyHandled++
			}
			if o.Ward == "" || c.Ward != o.Ward {
				continue
			}
			row.Total++
			switch c.Status {
			case models.StatusPending:
				row.Pending++
			case models.StatusInProgress:
				row.InProgress++
			case models.StatusResolved:
				row.Resolved++
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ActivelyHandled > rows[j].ActivelyHandled
	})
	return rows
}

// Unassigned returns the complaints without an officer, in input order.
func Unassigned(complaints []models.Complaint) []models.Complaint {
	out := make([]models.Complaint, 0)
	for _, c := range complaints {
		if !c.Assigned() {
			out = append(out, c)
		}
	}
	return out
}

// Latest returns the first n complaints. Input is expected newest first.
func Latest(complaints []models.Complaint, n int) []models.Complaint {
	if n < 0 {
		n = 0
	}
	n = min(n, len(complaints))
	return append(make([]models.Complaint, 0, n), complaints[:n]...)
}

// Snapshot is the admin overview at one point in time.
type Snapshot struct {
	Stats       Stats              `json:"stats"`
	Officers    []OfficerRow       `json:"officerPerformance"`
	Unassigned  []models.Complaint `json:"unassigned"`
	Latest      []models.Complaint `json:"latest"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Build assembles a Snapshot. complaints are expected newest first.
func Build(officers []models.Account, complaints []models.Complaint, latest int, at time.Time) Snapshot {
	return Snapshot{
		Stats:       Compute(complaints),
		Officers:    OfficerPerformance(officers, complaints),
		Unassigned:  Unassigned(complaints),
		Latest:      Latest(complaints, latest),
		GeneratedAt: at,
	}
}
