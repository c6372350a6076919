package formutil_test

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
)

func multipartRequest(t *testing.T, fields map[string]string, file string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != "" {
		fw, err := mw.CreateFormFile("image", file)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/citizen/complaints", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMultipart(t *testing.T) {
	req := multipartRequest(t, map[string]string{
		"description": "  garbage near the bus stand ",
		"latitude":    "11.0168",
		"longitude":   "",
		"name":        "",
	}, "bin.jpg", []byte("jpeg-bytes"))
	rec := httptest.NewRecorder()

	if !formutil.IsForm(req) || !formutil.IsMultipart(req) {
		t.Fatal("expected a multipart form")
	}
	if err := formutil.Parse(rec, req); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := formutil.Trimmed(req, "description"); got != "garbage near the bus stand" {
		t.Errorf("Trimmed = %q", got)
	}
	lat, err := formutil.OptionalFloat(req, "latitude")
	if err != nil || lat == nil || *lat != 11.0168 {
		t.Errorf("latitude = %v, %v", lat, err)
	}
	lng, err := formutil.OptionalFloat(req, "longitude")
	if err != nil || lng != nil {
		t.Errorf("blank longitude = %v, %v", lng, err)
	}
	if p := formutil.OptionalString(req, "name"); p == nil || *p != "" {
		t.Errorf("submitted blank name = %v", p)
	}
	if p := formutil.OptionalString(req, "phone"); p != nil {
		t.Errorf("absent phone = %q", *p)
	}

	f, done, err := formutil.File(req, "image")
	defer done()
	if err != nil || f == nil {
		t.Fatalf("File = %v, %v", f, err)
	}
	b, _ := io.ReadAll(f.Body)
	if f.Filename != "bin.jpg" || string(b) != "jpeg-bytes" || f.Size != int64(len("jpeg-bytes")) {
		t.Errorf("file = %+v body %q", f, b)
	}
	if f, _, _ := formutil.File(req, "badge"); f != nil {
		t.Error("expected no badge")
	}
}

func TestBadFloat(t *testing.T) {
	form := url.Values{"latitude": {"north"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := formutil.Parse(httptest.NewRecorder(), req); err != nil {
		t.Fatal(err)
	}
	_, err := formutil.OptionalFloat(req, "latitude")
	if !errors.Is(err, apperr.ErrValidation) || apperr.FieldsOf(err)[0] != "latitude" {
		t.Errorf("err = %v", err)
	}
	if f, _, err := formutil.File(req, "image"); f != nil || err != nil {
		t.Errorf("urlencoded File = %v, %v", f, err)
	}
}

func TestJSONIsNotForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if formutil.IsForm(req) {
		t.Error("json body reported as form")
	}
}
