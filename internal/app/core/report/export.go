package report

import (
	"strconv"
	"time"

	"github.com/dalemusser/wardwatch/internal/domain/models"
)

// TimestampLayout is how export rows format times.
const TimestampLayout = "02 Jan 2006, 15:04"

// ExportLocation is the time zone export timestamps are shown in.
var ExportLocation = loadIST()

func loadIST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+1800)
}

// Row is one complaint in the reporting-sink shape. Keys match the column
// headers of the exported sheet.
type Row struct {
	ID              string `json:"ID"`
	Ward            string `json:"Ward"`
	Category        string `json:"Category"`
	Description     string `json:"Description"`
	Status          string `json:"Status"`
	AIVerified      string `json:"AI_Verified"`
	AssignedOfficer string `json:"Assigned_Officer"`
	Latitude        string `json:"Latitude"`
	Longitude       string `json:"Longitude"`
	ImageURL        string `json:"Image_URL"`
	CreatedAt       string `json:"Created_At"`
	AssignedAt      string `json:"Assigned_At"`
}

// ExportRows converts complaints to rows in input order. Missing times
// print as an em dash placeholder and missing coordinates as empty cells.
func ExportRows(complaints []models.Complaint) []Row {
	rows := make([]Row, 0, len(complaints))
	for _, c := range complaints {
		r := Row{
			ID:              c.ID,
			Ward:            c.Ward,
			Category:        string(c.Category),
			Description:     c.Description,
			Status:          string(c.Status),
			AIVerified:      "No",
			AssignedOfficer: c.AssignedOfficerName,
			Latitude:        coord(c.Latitude),
			Longitude:       coord(c.Longitude),
			ImageURL:        c.ImageURL,
			CreatedAt:       stamp(c.CreatedAt),
			AssignedAt:      "—",
		}
		if c.AIVerified {
			r.AIVerified = "Yes"
		}
		if c.AssignedAt != nil {
			r.AssignedAt = stamp(*c.AssignedAt)
		}
		rows = append(rows, r)
	}
	return rows
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.In(ExportLocation).Format(TimestampLayout)
}

func coord(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
