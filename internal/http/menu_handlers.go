package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daniel06264831234/dimelo/internal/store"
)

type MenuAPI struct{ DB *store.Postgres }

type menuItemReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	ImageURL    string `json:"imageUrl"`
	Available   bool   `json:"available"`
}

type menuItemResp struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	ImageURL    string    `json:"imageUrl"`
	Available   bool      `json:"available"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func menuDTO(it store.MenuItem) menuItemResp {
	return menuItemResp{
		ID: it.ID, Name: it.Name, Description: it.Description,
		PriceCents: it.PriceCents, ImageURL: it.ImageURL,
		Available: it.Available, UpdatedAt: it.UpdatedAt,
	}
}

// List returns the full catalog; public
func (a *MenuAPI) List(w http.ResponseWriter, r *http.Request) {
	items, err := a.DB.ListMenu(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]menuItemResp, 0, len(items))
	for _, it := range items {
		resp = append(resp, menuDTO(it))
	}
	writeJSON(w, resp)
}

// Get returns one catalog entry; public
func (a *MenuAPI) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	it, err := a.DB.GetMenuItem(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, menuDTO(it))
}

// Create adds a catalog entry; staff only
func (a *MenuAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.PriceCents < 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	it, err := a.DB.CreateMenuItem(r.Context(), store.MenuItem{
		Name: req.Name, Description: req.Description,
		PriceCents: req.PriceCents, ImageURL: req.ImageURL, Available: req.Available,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, menuDTO(it))
}

// Update overwrites a catalog entry; staff only
func (a *MenuAPI) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req menuItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || id == "" || req.Name == "" || req.PriceCents < 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	it, err := a.DB.UpdateMenuItem(r.Context(), store.MenuItem{
		ID: id, Name: req.Name, Description: req.Description,
		PriceCents: req.PriceCents, ImageURL: req.ImageURL, Available: req.Available,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, menuDTO(it))
}

// Delete removes a catalog entry; staff only
func (a *MenuAPI) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := a.DB.DeleteMenuItem(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
