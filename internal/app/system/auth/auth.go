// Package auth carries the signed-in session across HTTP requests.
//
// The browser holds a gorilla/sessions cookie with nothing but the session
// id; the session itself lives in the session store and is restored (and its
// token re-verified) on every request by LoadSession.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const sessionIDKey = "sid"

// Restorer is the part of session.Guard the middleware needs.
type Restorer interface {
	Restore(ctx context.Context, id string) (*session.Session, error)
	Logout(ctx context.Context, s *session.Session)
}

// SessionManager owns the session cookie and the request guards.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	guard  Restorer
	logger *zap.Logger
}

// NewSessionManager builds the cookie store. The `secure` flag controls
// whether cookies are marked Secure.
//
// Cookies are SameSite=Lax so cross-site posts arrive without a session.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(key, name, domain string, maxAge time.Duration, secure bool, guard Restorer, logger *zap.Logger) (*SessionManager, error) {
	if key == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}
	if name == "" {
		name = "wardwatch-session"
	}

	store := sessions.NewCookieStore([]byte(key))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.Options = opts

	logger.Info("session manager initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, guard: guard, logger: logger}, nil
}

// Establish binds s to the browser.
func (sm *SessionManager) Establish(w http.ResponseWriter, r *http.Request, s *session.Session) error {
	cs, _ := sm.store.Get(r, sm.name)
	cs.Values[sessionIDKey] = s.ID
	return cs.Save(r, w)
}

// Destroy expires the session cookie.
func (sm *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) {
	cs, _ := sm.store.Get(r, sm.name)
	delete(cs.Values, sessionIDKey)
	cs.Options.MaxAge = -1
	if err := cs.Save(r, w); err != nil {
		sm.logger.Warn("session cookie clear failed", zap.Error(err))
	}
}

// LoadSession restores the session named by the cookie and injects it into
// the request context. A stale cookie is cleared; a provider outage leaves
// the cookie in place and continues unauthenticated.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.guard == nil {
			next.ServeHTTP(w, r)
			return
		}
		cs, _ := sm.store.Get(r, sm.name)
		id, _ := cs.Values[sessionIDKey].(string)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		s, err := sm.guard.Restore(r.Context(), id)
		switch {
		case err == nil:
			r = r.WithContext(session.WithSession(r.Context(), s))
		case apperr.CodeOf(err) == authprovider.CodeNetwork:
			sm.logger.Warn("session restore deferred", zap.Error(err))
		default:
			if !errors.Is(err, session.ErrNoSession) {
				sm.logger.Info("session dropped", zap.String("reason", apperr.CodeOf(err)))
			}
			sm.Destroy(w, r)
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentSession returns the session injected by LoadSession.
func CurrentSession(r *http.Request) (*session.Session, bool) {
	return session.FromContext(r.Context())
}

// CurrentAccount returns the signed-in account.
func CurrentAccount(r *http.Request) (models.Account, bool) {
	return session.Actor(r.Context())
}

// RequireSignedIn ensures there is an account in context.
// If not signed in:
//   - HTMX: sends HX-Redirect to the public entry
//   - HTML: 303 redirect to the public entry
//   - API:  401 with the redirect target in the body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentAccount(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		deny(w, r, http.StatusUnauthorized, session.PublicPath)
	})
}

// RequireRole admits accounts holding one of roles. Anonymous callers go to
// the public entry (401 semantics); other roles go to their own landing area
// (403 semantics).
func (sm *SessionManager) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var acct *models.Account
			if a, ok := CurrentAccount(r); ok {
				acct = &a
			}
			d := session.Authorize(acct, roles...)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			status := http.StatusForbidden
			if acct == nil {
				status = http.StatusUnauthorized
			}
			deny(w, r, status, d.Redirect)
		})
	}
}

// WithTestUser injects acct as a signed-in session. It mirrors what
// LoadSession does and exists for handler tests.
func WithTestUser(r *http.Request, acct models.Account) *http.Request {
	s := session.New(authprovider.Identity{UID: acct.ID, Email: acct.Email}, acct, time.Now(), session.DefaultTTL)
	return r.WithContext(session.WithSession(r.Context(), s))
}

func deny(w http.ResponseWriter, r *http.Request, status int, to string) {
	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(status)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, to, http.StatusSeeOther)
		return
	}
	msg := "Please sign in to continue."
	if status == http.StatusForbidden {
		msg = "This area is not available for your role."
	}
	respond.Redirect(w, status, to, msg)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
