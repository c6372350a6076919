// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/wardwatch/internal/app/store/audit"
)

// listItem is one audit event as returned to the admin.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorID       string            `json:"actorId,omitempty"`
	ActorName     string            `json:"actorName,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	TargetName    string            `json:"targetName,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// listData is the response body of the list endpoint.
type listData struct {
	Items      []listItem `json:"items"`
	Category   string     `json:"category,omitempty"`
	EventType  string     `json:"eventType,omitempty"`
	EventTypes []string   `json:"eventTypes"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventRegistered,
	}

	adminEvents := []string{
		audit.EventOfficerApproved,
		audit.EventOfficerRejected,
		audit.EventComplaintAssigned,
		audit.EventStatusAdvanced,
		audit.EventAdminProvisioned,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
