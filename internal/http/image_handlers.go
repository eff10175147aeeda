package httpx

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/daniel06264831234/dimelo/internal/store"
)

// 4 MiB cap on uploaded chat images
const maxImageBytes = 4 << 20

type ImagesAPI struct{ Blobs *store.Images }

type uploadResp struct {
	ID string `json:"id"`
}

// Upload stores a chat image blob and returns its id
func (a *ImagesAPI) Upload(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		return
	}
	id, err := a.Blobs.Put(r.Context(), data, ct)
	if err != nil {
		http.Error(w, "empty image", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(uploadResp{ID: id})
}

// Get streams a stored image blob back
func (a *ImagesAPI) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	data, ct, err := a.Blobs.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(data)
}
