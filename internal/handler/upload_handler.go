/*
Package handler provides the HTTP handlers and routing for the chat server.

This file holds the profile avatar upload: an authenticated multipart image
is validated, stored in the blob store under a fresh key, and the identity
record is updated with the resulting durable URL.
*/
package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"huddle/internal/pkg/errs"
	"huddle/internal/pkg/logx"
	"huddle/internal/pkg/randx"
	"huddle/internal/pkg/req"
	"huddle/internal/pkg/resp"
)

const (
	// maxAvatarSize caps avatar images at 5 MB.
	maxAvatarSize = 5 * 1024 * 1024

	// avatarKeyPrefix namespaces avatar objects in the bucket.
	avatarKeyPrefix = "avatars/"
)

// allowedAvatarMIMETypes is the set of accepted avatar image types.
var allowedAvatarMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// avatarExtToMIME maps accepted file extensions to their MIME types.
var avatarExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// validateAvatarFile checks the uploaded file's name and MIME type against
// the allowed image set, requiring the extension and type to agree.
func validateAvatarFile(fileName, mimeType string) *errs.CustomError {
	lowerMIME := strings.ToLower(mimeType)

	if _, ok := allowedAvatarMIMETypes[lowerMIME]; !ok {
		return errs.NewError(errs.ErrUnsupportedFileType)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	expectedMIME, ok := avatarExtToMIME[ext]
	if !ok || expectedMIME != lowerMIME {
		return errs.NewError(errs.ErrUnsupportedFileType)
	}

	return nil
}

// HandleUploadProfile stores an authenticated user's avatar image and marks
// their profile complete. Replacing an avatar deletes the previous object
// best-effort.
func HandleUploadProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayName, ok := requireIdentity(w, r, deps)
		if !ok {
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrNoFileUploaded))
			return
		}
		defer file.Close()

		if header.Size > maxAvatarSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTooLarge))
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if customErr := validateAvatarFile(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		keyID, err := randx.ObjectKey()
		if err != nil {
			logx.Error(err, "upload: failed to generate object key")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		key := avatarKeyPrefix + keyID + ext

		oldUser, err := deps.Identities.GetByName(r.Context(), displayName)
		if err != nil {
			logx.Error(err, "upload: identity fetch failed", "display_name", displayName)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		avatarURL, err := deps.StorageService.Upload(r.Context(), key, strings.ToLower(mimeType), file)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		if err := deps.Identities.SetAvatar(r.Context(), displayName, avatarURL); err != nil {
			logx.Error(err, "upload: failed to store avatar URL", "display_name", displayName)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if oldKey := objectKeyFromURL(oldUser.AvatarURL, deps.Config.S3PublicBaseURL); oldKey != "" {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.StorageService.Delete(ctx, k)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"success":   true,
			"avatarUrl": avatarURL,
		})
	}
}

// objectKeyFromURL recovers the bucket key from a durable avatar URL served
// under baseURL. URLs outside baseURL yield an empty key.
func objectKeyFromURL(avatarURL, baseURL string) string {
	if avatarURL == "" || baseURL == "" {
		return ""
	}

	key, found := strings.CutPrefix(avatarURL, baseURL+"/")
	if !found {
		return ""
	}

	return key
}
