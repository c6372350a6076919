// Package admission runs the officer approval workflow. Officers register
// pending; an administrator approves or rejects them once. Both outcomes are
// final, and repeating the same outcome changes nothing.
package admission

import (
	"fmt"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/domain/models"
)

// TransitionContext is what the transition guard needs to decide.
type TransitionContext struct {
	ActorRole   models.Role
	OfficerID   string
	OfficerRole models.Role
	Current     models.AdmissionStatus
	Target      models.AdmissionStatus
}

// GuardResult is the outcome of a guard. NoOp marks an allowed transition
// that leaves the status unchanged.
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

func deny(err *apperr.Error) GuardResult { return GuardResult{Err: err} }

// CanTransition decides whether an officer's admission status may move to
// Target. Only admins act; only officers are subject to admission; only
// pending officers move, and re-applying the current outcome is a no-op.
func CanTransition(ctx TransitionContext) GuardResult {
	if ctx.ActorRole != models.RoleAdmin {
		return deny(apperr.ErrForbidden.With("only administrators can approve or reject officers"))
	}
	if ctx.OfficerRole != models.RoleOfficer {
		return deny(apperr.Validation(fmt.Sprintf("account %s is not an officer", ctx.OfficerID), "officerId"))
	}
	if ctx.Target != models.AdmissionApproved && ctx.Target != models.AdmissionRejected {
		return deny(apperr.Validation(fmt.Sprintf("admission status %q is not a decision", ctx.Target), "status"))
	}
	switch {
	case ctx.Current == ctx.Target:
		return GuardResult{Allowed: true, NoOp: true}
	case ctx.Current != models.AdmissionPending:
		return deny(apperr.ErrInvalidTransition.With(fmt.Sprintf("officer %s is already %s", ctx.OfficerID, ctx.Current)))
	}
	return GuardResult{Allowed: true}
}
