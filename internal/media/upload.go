package media

import (
	"errors"
	"log"
	"net/http"

	"whispr/internal/common"
	"whispr/internal/dbmongo"
)

// UploadHandler accepts multipart attachment uploads and stores them in
// GridFS. Validation happens entirely before the first blob write, so an
// oversized or mistyped upload leaves no partial state behind.
type UploadHandler struct {
	storage *dbmongo.MediaStorage
}

func NewUploadHandler(storage *dbmongo.MediaStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Reject oversized bodies before buffering the whole payload. The extra
	// headroom covers multipart framing around the 25 MB file cap.
	r.Body = http.MaxBytesReader(w, r.Body, dbmongo.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		common.WriteError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "No file")
		return
	}
	defer file.Close()

	purpose := r.FormValue("type")
	if purpose == "" {
		purpose = "file"
	}

	mimeType := header.Header.Get("Content-Type")
	if err := dbmongo.ValidateUpload(purpose, header.Filename, mimeType, header.Size); err != nil {
		switch {
		case errors.Is(err, dbmongo.ErrEmptyFile):
			common.WriteError(w, http.StatusBadRequest, "No file")
		case errors.Is(err, dbmongo.ErrFileTooLarge):
			common.WriteError(w, http.StatusBadRequest, "File too large")
		default:
			common.WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	stored, err := h.storage.UploadFile(r.Context(), header.Filename, mimeType, userID, file)
	if err != nil {
		log.Printf("upload for %s failed: %v", userID, err)
		common.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{
		"url":      "/media/" + stored.ID,
		"fileName": header.Filename,
	})
}
