// Package complaint is the complaint lifecycle engine: citizens submit,
// administrators assign approved officers, and officers or administrators
// move the status forward through Pending, In Progress and Resolved.
//
// The guards in this file are pure; Service does the I/O around them.
package complaint

import (
	"fmt"
	"math"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
)

// GuardResult is the outcome of a guard. NoOp marks an allowed call that
// changes nothing.
type GuardResult struct {
	Allowed bool
	NoOp    bool
	Err     *apperr.Error
}

// Error returns nil when allowed.
func (r GuardResult) Error() error {
	switch {
	case r.Allowed:
		return nil
	case r.Err == nil:
		return apperr.ErrForbidden
	}
	return r.Err
}

func allow() GuardResult                 { return GuardResult{Allowed: true} }
func deny(err *apperr.Error) GuardResult { return GuardResult{Err: err} }

// AdvanceContext describes a requested status change.
type AdvanceContext struct {
	ComplaintID string
	Current     models.ComplaintStatus
	Target      models.ComplaintStatus
}

// CanAdvance allows forward moves, including skipping In Progress, and
// treats the current status as a no-op. Moving backward is an invalid
// transition. An unrecognized stored status counts as Pending.
func CanAdvance(ctx AdvanceContext) GuardResult {
	to := ctx.Target.Rank()
	if to < 0 {
		return deny(apperr.Validation(fmt.Sprintf("unknown status %q", ctx.Target), "status"))
	}
	from := max(ctx.Current.Rank(), 0)
	switch {
	case to == from:
		return GuardResult{Allowed: true, NoOp: true}
	case to < from:
		return deny(apperr.ErrInvalidTransition.With(fmt.Sprintf(
			"complaint %s cannot move from %s back to %s", ctx.ComplaintID, models.Statuses[from], ctx.Target)))
	}
	return allow()
}

// TriageContext describes who is acting on which complaint.
type TriageContext struct {
	ActorID           string
	ActorRole         models.Role
	ActorWard         string
	ComplaintWard     string
	AssignedOfficerID string
}

// CanTriage allows admins everywhere and officers on complaints in their
// own ward or assigned to them.
func CanTriage(ctx TriageContext) GuardResult {
	switch ctx.ActorRole {
	case models.RoleAdmin:
		return allow()
	case models.RoleOfficer:
		if ctx.ActorWard != "" && ctx.ActorWard == ctx.ComplaintWard {
			return allow()
		}
		if ctx.AssignedOfficerID != "" && ctx.AssignedOfficerID == ctx.ActorID {
			return allow()
		}
		return deny(apperr.ErrForbidden.With("this complaint is outside your ward"))
	}
	return deny(apperr.ErrForbidden.With("only officers and administrators can update complaints"))
}

// AssignContext describes an assignment request. Officer is only meaningful
// when OfficerFound is true.
type AssignContext struct {
	ActorRole    models.Role
	OfficerID    string
	OfficerFound bool
	Officer      models.Account
}

// CanAssign allows admins to assign approved officers. An absent officer, a
// non-officer account and an officer in any other admission state are all
// ineligible.
func CanAssign(ctx AssignContext) GuardResult {
	if ctx.ActorRole != models.RoleAdmin {
		return deny(apperr.ErrForbidden.With("only administrators can assign complaints"))
	}
	if !ctx.OfficerFound || !ctx.Officer.Eligible() {
		return deny(apperr.ErrOfficerNotEligible.With(fmt.Sprintf("officer %s is not approved for assignments", ctx.OfficerID)))
	}
	return allow()
}

// Submission is a citizen's new complaint before it is stored.
type Submission struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	ZoneID      string   `json:"zoneId"`
	Ward        string   `json:"ward"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	// EvidenceRef is an absolute URL or a blob reference under the
	// reporter's own complaints/<id>/ prefix. It is ignored when an Evidence
	// file is supplied to Submit.
	EvidenceRef string `json:"imageUrl,omitempty"`
}

// CheckEvidenceRef accepts an absolute URL or a reference inside the
// reporter's evidence folder.
func CheckEvidenceRef(reporterID, ref string) error {
	if ref == "" || blobstore.IsURL(blobstore.Ref(ref)) {
		return nil
	}
	prefix := "complaints/" + blobstore.SanitizeFilename(reporterID) + "/"
	if !strings.HasPrefix(ref, prefix) || len(ref) == len(prefix) {
		return apperr.Validation("Image must be one of your own uploads.", "image")
	}
	for _, seg := range strings.Split(ref, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return apperr.Validation("Image must be one of your own uploads.", "image")
		}
	}
	return nil
}

// Validated is a submission that passed ValidateSubmission.
type Validated struct {
	Category    models.Category
	Description string
	Zone        zones.Zone
	Ward        string
	Latitude    float64
	Longitude   float64
}

// ValidateSubmission checks a submission against the directory. Markup is
// stripped from the description and the ward label is canonicalized. Every
// offending field is named in the returned validation error.
func ValidateSubmission(dir *zones.Directory, sub Submission) (Validated, error) {
	var v Validated
	var fields []string

	v.Description = normalize.Text(sub.Description)
	if v.Description == "" {
		fields = append(fields, "description")
	}

	v.Ward = normalize.Ward(sub.Ward)
	if v.Ward == "" {
		fields = append(fields, "ward")
	} else if z, ok := dir.Resolve(strings.TrimSpace(sub.ZoneID), v.Ward); ok {
		v.Zone = z
	} else if _, known := dir.ZoneByWard(v.Ward); known {
		fields = append(fields, "zoneId")
	} else {
		fields = append(fields, "ward")
	}

	if !coordinate(sub.Latitude, 90) {
		fields = append(fields, "latitude")
	}
	if !coordinate(sub.Longitude, 180) {
		fields = append(fields, "longitude")
	}

	cat, ok := models.ParseCategory(sub.Category)
	if !ok {
		fields = append(fields, "category")
	}
	v.Category = cat

	if len(fields) > 0 {
		return Validated{}, apperr.Validation("Zone, ward, description, and map location are required.", fields...)
	}
	v.Latitude, v.Longitude = *sub.Latitude, *sub.Longitude
	return v, nil
}

func coordinate(p *float64, limit float64) bool {
	return p != nil && !math.IsNaN(*p) && math.Abs(*p) <= limit
}
