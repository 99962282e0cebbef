package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskforge/taskforge-backend/internal/middleware"
	"github.com/taskforge/taskforge-backend/internal/services"
)

// maxAvatarFormMemory bounds multipart parsing. Larger than the avatar size
// limit on purpose: oversize uploads must reach the pipeline so they are
// rejected with the proper error instead of a parse failure.
const maxAvatarFormMemory = 4 << 20 // 4MB

type AvatarHandler struct {
	users   *services.UserService
	avatars *services.AvatarService
}

func NewAvatarHandler(users *services.UserService, avatars *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{users: users, avatars: avatars}
}

// Upload accepts a multipart `avatar` field, normalizes it to a 250x250 PNG,
// and stores it on the caller's record. Size/type rejections are 400; a
// decode failure after the checks is 500.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read avatar file")
		return
	}

	if err := h.avatars.Set(r.Context(), user, raw, header.Filename); err != nil {
		switch {
		case errors.Is(err, services.ErrAvatarTooLarge),
			errors.Is(err, services.ErrUnsupportedImage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrImageProcessing):
			writeError(w, http.StatusInternalServerError, services.ErrImageProcessing.Error())
		default:
			writeServiceError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Delete clears the caller's avatar.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.avatars.Clear(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Get serves the stored avatar bytes. Stored avatars are always PNG after
// normalization. Missing user or avatar gets an empty 404, nothing more.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil || len(user.Avatar) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(user.Avatar)
}
