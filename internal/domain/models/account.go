// internal/domain/models/account.go
package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. The string values are the stored
// wire values; citizens are stored as "user".
type Role string

const (
	RoleCitizen Role = "user"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleCitizen, RoleOfficer, RoleAdmin}

// ParseRole accepts the stored value plus the "citizen" alias.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "citizen":
		return RoleCitizen, true
	case "officer":
		return RoleOfficer, true
	case "admin":
		return RoleAdmin, true
	}
	return "", false
}

// Valid reports whether r is one of the stored role values.
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleOfficer || r == RoleAdmin
}

// Label is the human name of the role.
func (r Role) Label() string {
	switch r {
	case RoleCitizen:
		return "citizen"
	case RoleOfficer:
		return "officer"
	case RoleAdmin:
		return "admin"
	}
	return string(r)
}

// AdmissionStatus tracks an officer account through admission.
type AdmissionStatus string

const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionApproved AdmissionStatus = "approved"
	AdmissionRejected AdmissionStatus = "rejected"
)

// ParseAdmissionStatus normalizes a stored or user supplied status.
func ParseAdmissionStatus(s string) (AdmissionStatus, bool) {
	switch AdmissionStatus(strings.ToLower(strings.TrimSpace(s))) {
	case AdmissionPending:
		return AdmissionPending, true
	case AdmissionApproved:
		return AdmissionApproved, true
	case AdmissionRejected:
		return AdmissionRejected, true
	}
	return "", false
}

// Account is the profile record stored in the "users" collection, keyed by
// the auth provider's identity id.
type Account struct {
	ID        string          `bson:"_id" json:"id"`
	Email     string          `bson:"email" json:"email"`
	Role      Role            `bson:"role" json:"role"`
	Name      string          `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string          `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string          `bson:"address,omitempty" json:"address,omitempty"`
	PhotoURL  string          `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Ward      string          `bson:"ward,omitempty" json:"ward,omitempty"`
	ZoneID    string          `bson:"zoneId,omitempty" json:"zoneId,omitempty"`
	ZoneName  string          `bson:"zoneName,omitempty" json:"zoneName,omitempty"`
	Status    AdmissionStatus `bson:"status,omitempty" json:"status,omitempty"`
	BadgeURL  string          `bson:"badgeUrl,omitempty" json:"badgeUrl,omitempty"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
}

// Admission returns the effective admission status. Officers without a stored
// status are pending; citizens and admins are implicitly approved.
func (a Account) Admission() AdmissionStatus {
	if a.Role != RoleOfficer {
		return AdmissionApproved
	}
	if s, ok := ParseAdmissionStatus(string(a.Status)); ok {
		return s
	}
	return AdmissionPending
}

// Eligible reports whether the account may receive complaint assignments.
func (a Account) Eligible() bool {
	return a.Role == RoleOfficer && a.Admission() == AdmissionApproved
}

// DisplayName falls back to the email when no name is set.
func (a Account) DisplayName() string {
	if n := strings.TrimSpace(a.Name); n != "" {
		return n
	}
	return a.Email
}
