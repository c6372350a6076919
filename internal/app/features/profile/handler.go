// internal/app/features/profile/handler.go
package profile

import (
	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"go.uber.org/zap"
)

// Handler owns the signed-in account's profile page.
type Handler struct {
	Registration *registration.Service
	Log          *zap.Logger
}

// NewHandler constructs a Handler bound to the registration service.
func NewHandler(reg *registration.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Registration: reg,
		Log:          logger,
	}
}
