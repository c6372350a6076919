// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var updateMessages = errmsg.Options{Fallback: "Unable to save your profile."}

// ServeProfile returns the signed-in account's profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	profile, err := h.Registration.Profile(ctx, acct)
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load your profile."})
		return
	}
	respond.OK(w, map[string]any{
		"account": profile,
		"role":    profile.Role.Label(),
	})
}

// HandleUpdate edits name, phone and address. A multipart body may carry a
// replacement "photo".
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	var (
		in    registration.ProfileInput
		photo *blobstore.File
	)
	if formutil.IsForm(r) {
		if err := formutil.Parse(w, r); err != nil {
			respond.Error(w, r, h.Log, err, updateMessages)
			return
		}
		in.Name = formutil.OptionalString(r, "name")
		in.Phone = formutil.OptionalString(r, "phone")
		in.Address = formutil.OptionalString(r, "address")

		f, done, err := formutil.File(r, "photo")
		defer done()
		if err != nil {
			respond.Error(w, r, h.Log, err, updateMessages)
			return
		}
		photo = f
	} else if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err, updateMessages)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Registration.UpdateProfile(ctx, acct, in, photo)
	if err != nil {
		respond.Error(w, r, h.Log, err, updateMessages)
		return
	}
	h.Log.Info("profile updated", zap.String("uid", acct.ID), zap.Bool("photo", photo != nil))

	respond.OK(w, map[string]any{
		"account":  updated,
		"message":  "Profile saved.",
		"redirect": session.Landing(updated.Role),
	})
}
