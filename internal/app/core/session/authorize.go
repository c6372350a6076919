package session

import (
	"slices"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/domain/models"
)

// PublicPath is where unauthenticated actors land.
const PublicPath = "/"

var landing = map[models.Role]string{
	models.RoleCitizen: "/citizen",
	models.RoleOfficer: "/officer",
	models.RoleAdmin:   "/admin",
}

// Landing returns the default area for role, or PublicPath for an unknown
// role.
func Landing(role models.Role) string {
	if p, ok := landing[role]; ok {
		return p
	}
	return PublicPath
}

// Decision is the outcome of an area check. When access is denied Redirect
// names where the actor should be sent instead.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Authorize allows acct into an area open to roles. A nil account is sent to
// the public entry; a signed-in account with the wrong role is sent to its
// own landing area.
func Authorize(acct *models.Account, roles ...models.Role) Decision {
	if acct == nil {
		return Decision{Redirect: PublicPath}
	}
	if slices.Contains(roles, acct.Role) {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: Landing(acct.Role)}
}

// Permit is Authorize for operations rather than areas: it returns
// ErrUnauthenticated or ErrForbidden instead of a redirect.
func Permit(acct *models.Account, roles ...models.Role) error {
	d := Authorize(acct, roles...)
	switch {
	case d.Allowed:
		return nil
	case acct == nil:
		return apperr.ErrUnauthenticated
	}
	return apperr.ErrForbidden.With("the " + acct.Role.Label() + " role cannot perform this action")
}
