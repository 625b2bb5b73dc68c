package handler

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxUploadBytes caps in-memory multipart parsing. Images are stored inline
// as data URLs, so anything bigger has no business here anyway.
const maxUploadBytes = 16 << 20

type UploadHandler struct {
	logger *slog.Logger
}

func NewUploadHandler(logger *slog.Logger) *UploadHandler {
	return &UploadHandler{logger: logger}
}

// Upload accepts a multipart image and returns it as an inline data URL,
// suitable for storing straight into a property's photo_url. Nothing is
// persisted server-side.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("read upload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
		return
	}
	if len(content) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty file"})
		return
	}

	url := "data:" + mimeFromFilename(header.Filename) + ";base64," +
		base64.StdEncoding.EncodeToString(content)

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// mimeFromFilename infers the image type from the extension, defaulting to
// JPEG like the rest of the upload pipeline expects.
func mimeFromFilename(name string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(name), ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
