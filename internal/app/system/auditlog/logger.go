// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	"github.com/dalemusser/wardwatch/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, registration).
	// Values: "all" (document store + zap), "db" (document store only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for admin and triage actions (admission, assignment, status).
	// Values: "all" (document store + zap), "db" (document store only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It writes to the audit store and to zap, per Config.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// requestMeta tolerates a nil request for events raised outside HTTP.
func requestMeta(r *http.Request) (ip, ua string) {
	if r == nil {
		return "", ""
	}
	return ratelimit.ClientIP(r), r.UserAgent()
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, role, email string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    userID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
		Details: map[string]string{
			"role":  role,
			"email": email,
		},
	})
}

// LoginFailed logs a rejected login with the failure code.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, code string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		IP:            ip,
		UserAgent:     ua,
		Success:       false,
		FailureReason: code,
		Details: map[string]string{
			"email": email,
		},
	})
}

// LoginFailedRateLimit logs a login refused by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            ip,
		UserAgent:     ua,
		Success:       false,
		FailureReason: "rate limit exceeded",
		Details: map[string]string{
			"email": email,
		},
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
	})
}

// Registered logs a new citizen or officer account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID, role, ward string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventRegistered,
		UserID:    userID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
		Details: map[string]string{
			"role": role,
			"ward": ward,
		},
	})
}

// --- Admin Events ---

// OfficerApproved logs an admission approval.
func (l *Logger) OfficerApproved(ctx context.Context, r *http.Request, actorID, officerID string) {
	l.admission(ctx, r, audit.EventOfficerApproved, actorID, officerID)
}

// OfficerRejected logs an admission rejection.
func (l *Logger) OfficerRejected(ctx context.Context, r *http.Request, actorID, officerID string) {
	l.admission(ctx, r, audit.EventOfficerRejected, actorID, officerID)
}

func (l *Logger) admission(ctx context.Context, r *http.Request, eventType, actorID, officerID string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserID:    officerID,
		ActorID:   actorID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
	})
}

// ComplaintAssigned logs an assignment. previousOfficerID is empty for a
// first assignment.
func (l *Logger) ComplaintAssigned(ctx context.Context, r *http.Request, actorID, complaintID, officerID, previousOfficerID string) {
	ip, ua := requestMeta(r)
	details := map[string]string{
		"complaint_id": complaintID,
	}
	if previousOfficerID != "" {
		details["previous_officer_id"] = previousOfficerID
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventComplaintAssigned,
		UserID:    officerID,
		ActorID:   actorID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
		Details:   details,
	})
}

// StatusAdvanced logs a complaint status change.
func (l *Logger) StatusAdvanced(ctx context.Context, r *http.Request, actorID, complaintID, from, to string) {
	ip, ua := requestMeta(r)
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventStatusAdvanced,
		ActorID:   actorID,
		IP:        ip,
		UserAgent: ua,
		Success:   true,
		Details: map[string]string{
			"complaint_id": complaintID,
			"from":         from,
			"to":           to,
		},
	})
}

// AdminProvisioned logs creation or promotion of an admin account.
func (l *Logger) AdminProvisioned(ctx context.Context, userID, email string, promoted bool) {
	how := "created"
	if promoted {
		how = "promoted"
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminProvisioned,
		UserID:    userID,
		Success:   true,
		Details: map[string]string{
			"email": email,
			"how":   how,
		},
	})
}
