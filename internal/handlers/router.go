package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"stock-advisor-go/internal/config"
	"stock-advisor-go/internal/middleware"
	"stock-advisor-go/internal/ws"
)

// NewRouter wires every endpoint behind the shared middleware stack. Login and
// the live feed stay outside JWT auth; everything else under /api requires a
// token, and /api/admin additionally requires the admin role.
func NewRouter(cfg *config.Config, hub *ws.Hub, auth *AuthHandler, trades *TradeHandler,
	users *UserHandler, stats *StatsHandler, notify *NotifyHandler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/login", auth.Login).Methods("POST")
	r.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWebSocket)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware([]byte(cfg.Auth.JWTSecret)))

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnly)

	trades.RegisterRoutes(api, admin)
	users.RegisterRoutes(api, admin)
	stats.RegisterRoutes(api, admin)
	notify.RegisterRoutes(admin)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}
