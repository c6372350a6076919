// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	pageSize = 50
	maxLimit = 500
)

// ServeList handles GET /admin/audit. Filters: category, event_type,
// start_date (YYYY-MM-DD) and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	startDate := strings.TrimSpace(q.Get("start_date"))

	if category != "" && eventTypesForCategory(category) == nil {
		respond.Error(w, r, h.Log, apperr.Validation("Category must be auth or admin.", "category"), errmsg.Options{})
		return
	}

	limit := pageSize
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = min(l, maxLimit)
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     limit,
	}
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			respond.Error(w, r, h.Log, apperr.Validation("Start date must be YYYY-MM-DD.", "start_date"), errmsg.Options{})
			return
		}
		filter.Since = &t
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("audit query failed", zap.Error(err))
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load the audit log."})
		return
	}

	names := h.resolveNames(ctx, events)
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:            e.ID,
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			ActorID:       e.ActorID,
			ActorName:     names[e.ActorID],
			UserID:        e.UserID,
			TargetName:    names[e.UserID],
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		})
	}

	respond.OK(w, listData{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		EventTypes: eventTypesForCategory(category),
	})
}

// resolveNames maps every actor and target id in events to a display name.
// Unknown ids are left out.
func (h *Handler) resolveNames(ctx context.Context, events []audit.Event) map[string]string {
	names := make(map[string]string)
	if h.Accounts == nil {
		return names
	}
	for _, e := range events {
		for _, id := range []string{e.ActorID, e.UserID} {
			if id == "" {
				continue
			}
			if _, seen := names[id]; seen {
				continue
			}
			acct, err := h.Accounts.GetByID(ctx, id)
			if err != nil {
				names[id] = ""
				continue
			}
			names[id] = acct.DisplayName()
		}
	}
	return names
}
