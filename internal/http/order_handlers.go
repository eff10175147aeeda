package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daniel06264831234/dimelo/internal/store"
)

type OrdersAPI struct{ DB *store.Postgres }

type createOrderReq struct {
	Customer string `json:"customer"`
	Items    []struct {
		MenuItemID string `json:"menuItemId"`
		Quantity   int    `json:"quantity"`
	} `json:"items"`
}

type orderResp struct {
	ID         string            `json:"id"`
	Customer   string            `json:"customer"`
	Items      []store.OrderItem `json:"items"`
	TotalCents int64             `json:"totalCents"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func orderDTO(o store.Order) orderResp {
	return orderResp{
		ID: o.ID, Customer: o.Customer, Items: o.Items,
		TotalCents: o.TotalCents, Status: o.Status,
		CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}
}

// Create places an order. Prices are snapshotted from the catalog so menu
// edits never rewrite a placed order.
func (a *OrdersAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	items := make([]store.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			http.Error(w, "invalid quantity", http.StatusBadRequest)
			return
		}
		it, err := a.DB.GetMenuItem(r.Context(), line.MenuItemID)
		if err != nil {
			http.Error(w, "unknown menu item", http.StatusBadRequest)
			return
		}
		if !it.Available {
			http.Error(w, "item not available: "+it.Name, http.StatusConflict)
			return
		}
		items = append(items, store.OrderItem{
			MenuItemID: it.ID, Name: it.Name, PriceCents: it.PriceCents, Quantity: line.Quantity,
		})
	}

	o, err := a.DB.CreateOrder(r.Context(), req.Customer, items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, orderDTO(o))
}

// List returns up to 100 orders, newest first; staff only
func (a *OrdersAPI) List(w http.ResponseWriter, r *http.Request) {
	orders, err := a.DB.ListOrders(r.Context(), 100, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderDTO(o))
	}
	writeJSON(w, resp)
}

// Get returns one order
func (a *OrdersAPI) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	o, err := a.DB.GetOrder(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, orderDTO(o))
}

// UpdateStatus moves an order along its lifecycle; staff only
func (a *OrdersAPI) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || id == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if !store.ValidOrderStatus(req.Status) {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	o, err := a.DB.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, orderDTO(o))
}
