// internal/app/features/auditlog/handler.go
package auditlog

import (
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Events   *audit.Store
	Accounts *accountstore.Store
	Log      *zap.Logger
}

// NewHandler constructs an Audit Log feature handler bound to the audit
// store. accounts resolves actor and target names and may be nil.
func NewHandler(events *audit.Store, accounts *accountstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   events,
		Accounts: accounts,
		Log:      logger,
	}
}
