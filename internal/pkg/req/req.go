/*
Package req provides helpers for parsing and binding HTTP request data.

It covers JSON bodies, URL-encoded form posts (the login/register surface),
and multipart uploads, with size limits enforced before any business logic
runs.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"huddle/internal/pkg/errs"
)

const (
	// MaxFormMemory caps the memory ParseMultipartForm uses for non-file
	// fields; larger file parts spill to temporary files.
	MaxFormMemory int64 = 8 << 20 // 8 MB

	// MaxUploadBodySize caps the entire multipart request body, enforced
	// via http.MaxBytesReader.
	MaxUploadBodySize int64 = 6 << 20 // 6 MB
)

// BindJSON binds the JSON request body to dst, rejecting unknown fields and
// trailing content.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// ParseForm parses a URL-encoded form post.
func ParseForm(r *http.Request) *errs.CustomError {
	if err := r.ParseForm(); err != nil {
		return errs.NewError(errs.ErrFormParseFailed)
	}
	return nil
}

// SetupMultipart installs the request body size cap and parses multipart
// form data.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBodySize)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
