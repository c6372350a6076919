// Package formutil reads browser form submissions, including multipart
// uploads, for handlers that also accept JSON.
//
// Example usage:
//
//	if formutil.IsForm(r) {
//		if err := formutil.Parse(w, r); err != nil { ... }
//		sub.Description = formutil.Trimmed(r, "description")
//		sub.Latitude, err = formutil.OptionalFloat(r, "latitude")
//		ev, done, err := formutil.File(r, "image")
//		defer done()
//	} else {
//		err = respond.Decode(w, r, &sub)
//	}
package formutil

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
)

// MaxUploadBytes caps a multipart request body.
const MaxUploadBytes = 10 << 20

// memoryBytes is how much of a multipart body is held in memory before
// spilling to temp files.
const memoryBytes = 2 << 20

func mediaType(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt
}

// IsMultipart reports a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	return mediaType(r) == "multipart/form-data"
}

// IsForm reports a urlencoded or multipart body.
func IsForm(r *http.Request) bool {
	mt := mediaType(r)
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// Parse reads the form body. An oversized or malformed body is a
// validation error.
func Parse(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	var err error
	if IsMultipart(r) {
		err = r.ParseMultipartForm(memoryBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Validation("The upload is too large.", "file").Wrap(err)
		}
		return apperr.Validation("The form could not be read.", "body").Wrap(err)
	}
	return nil
}

// Trimmed returns the trimmed form value for key.
func Trimmed(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// OptionalString is nil when key was not submitted at all.
func OptionalString(r *http.Request, key string) *string {
	if _, ok := r.Form[key]; !ok {
		if r.MultipartForm == nil {
			return nil
		}
		if _, ok := r.MultipartForm.Value[key]; !ok {
			return nil
		}
	}
	v := strings.TrimSpace(r.FormValue(key))
	return &v
}

// OptionalFloat parses key as a float. A blank value yields nil; a value
// that is not a number is a validation error naming key.
func OptionalFloat(r *http.Request, key string) (*float64, error) {
	s := Trimmed(r, key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperr.Validation(key+" must be a number.", key)
	}
	return &f, nil
}

// File returns the uploaded file under key, or nil when none was sent.
// done releases the file and is always safe to call.
func File(r *http.Request, key string) (f *blobstore.File, done func(), err error) {
	done = func() {}
	if r.MultipartForm == nil {
		return nil, done, nil
	}
	file, hdr, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, done, nil
	}
	if err != nil {
		return nil, done, apperr.Validation("The uploaded file could not be read.", key).Wrap(err)
	}
	if hdr.Size == 0 {
		_ = file.Close()
		return nil, done, nil
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &blobstore.File{
		Filename:    hdr.Filename,
		ContentType: ct,
		Size:        hdr.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}
