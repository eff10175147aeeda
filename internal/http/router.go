package httpx

import (
	"net/http"

	"log/slog"

	"github.com/daniel06264831234/dimelo/internal/app"
	"github.com/daniel06264831234/dimelo/internal/store"
	"github.com/daniel06264831234/dimelo/internal/ws"
	"github.com/daniel06264831234/dimelo/pkg/auth"
	"github.com/daniel06264831234/dimelo/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers. The chat
// engine sits behind /ws only; nothing under /api calls into it.
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, db *store.Postgres, blobs *store.Images) http.Handler {
	mw := NewMiddleware(cfg)

	j := auth.New(cfg.JWTSecret)
	authAPI := &AuthAPI{DB: db, JWT: j}
	menuAPI := &MenuAPI{DB: db}
	ordersAPI := &OrdersAPI{DB: db}
	imagesAPI := &ImagesAPI{Blobs: blobs}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint (chat rooms)
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Auth endpoints (staff accounts for the menu/order surface)
	mux.Handle("/api/auth/register", http.HandlerFunc(authAPI.Register))
	mux.Handle("/api/auth/login", http.HandlerFunc(authAPI.Login))
	mux.Handle("/api/auth/me", mw.Auth(http.HandlerFunc(authAPI.Me)))

	// Menu catalog: reads public, writes staff-only
	mux.Handle("GET /api/menu", http.HandlerFunc(menuAPI.List))
	mux.Handle("POST /api/menu", mw.Auth(http.HandlerFunc(menuAPI.Create)))
	mux.Handle("GET /api/menu/{id}", http.HandlerFunc(menuAPI.Get))
	mux.Handle("PUT /api/menu/{id}", mw.Auth(http.HandlerFunc(menuAPI.Update)))
	mux.Handle("DELETE /api/menu/{id}", mw.Auth(http.HandlerFunc(menuAPI.Delete)))

	// Orders: placing and reading one is public, listing and status are staff-only
	mux.Handle("POST /api/orders", http.HandlerFunc(ordersAPI.Create))
	mux.Handle("GET /api/orders", mw.Auth(http.HandlerFunc(ordersAPI.List)))
	mux.Handle("GET /api/orders/{id}", http.HandlerFunc(ordersAPI.Get))
	mux.Handle("PUT /api/orders/{id}/status", mw.Auth(http.HandlerFunc(ordersAPI.UpdateStatus)))

	// Chat image blobs
	mux.Handle("POST /api/images", http.HandlerFunc(imagesAPI.Upload))
	mux.Handle("GET /api/images/{id}", http.HandlerFunc(imagesAPI.Get))

	// Static assets (chat UI) at the root
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
