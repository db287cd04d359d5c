package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/garnizeh/pereval/pkg/repository"
)

// maxImageBytes bounds a single multipart upload.
const maxImageBytes = 32 << 20

type ImageHandler struct {
	repo repository.ImageRepo
}

func NewImageHandler(repo repository.ImageRepo) *ImageHandler {
	return &ImageHandler{repo: repo}
}

type uploadResponse struct {
	ImageID int64 `json:"image_id"`
}

// Upload stores the multipart field "image" as an opaque blob.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, repository.Invalid("image exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, r, repository.Invalid("multipart field image is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, repository.Invalid("read image: %v", err))
		return
	}

	id, err := h.repo.AddImage(r.Context(), data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info("image uploaded",
		slog.String("request_id", RequestID(r.Context())),
		slog.Int64("id", id),
		slog.Int("bytes", len(data)),
	)
	writeJSON(w, uploadResponse{ImageID: id}, http.StatusOK)
}

// Get writes the stored bytes back with a sniffed content type.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	img, err := h.repo.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(img.Data))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
