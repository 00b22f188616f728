package handlers

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/annolab/facepair/internal/images"
)

// maxThumbnailSize caps the ?size= parameter so a request cannot ask for
// an upscale or an oversized re-encode.
const maxThumbnailSize = 2048

// ImagesHandler serves catalog image files in local mode. In URL mode the
// browser loads images straight from the external base and this endpoint
// refuses.
type ImagesHandler struct {
	resolver *images.Resolver
}

func NewImagesHandler(resolver *images.Resolver) *ImagesHandler {
	return &ImagesHandler{resolver: resolver}
}

// Serve streams an image file by catalog filename. An optional ?size=
// parameter returns a JPEG thumbnail fitting within that dimension.
func (h *ImagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.resolver.URLMode() {
		respondError(w, http.StatusNotFound, "images are served from an external URL")
		return
	}

	name := chi.URLParam(r, "name")
	localPath, err := h.resolver.LocalPath(name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if size := r.URL.Query().Get("size"); size != "" {
		h.serveThumbnail(w, r, localPath, size)
		return
	}

	f, err := os.Open(localPath)
	if err != nil {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *ImagesHandler) serveThumbnail(w http.ResponseWriter, r *http.Request, localPath, size string) {
	maxSize, err := strconv.Atoi(size)
	if err != nil || maxSize <= 0 || maxSize > maxThumbnailSize {
		respondError(w, http.StatusBadRequest, "invalid size parameter")
		return
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	resized, err := images.Resize(data, maxSize)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "failed to process image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(resized)
}
