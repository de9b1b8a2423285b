package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-advisor-go/internal/middleware"
	"stock-advisor-go/internal/models"
	"stock-advisor-go/internal/service"
)

// UserHandler serves the subscriber-management endpoints for the admin
// console, plus the self profile for the mobile app.
type UserHandler struct {
	users  service.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// RegisterRoutes registers user routes on the authenticated and admin routers.
func (h *UserHandler) RegisterRoutes(api, admin *mux.Router) {
	api.HandleFunc("/me", h.Me).Methods("GET")

	admin.HandleFunc("/users", h.List).Methods("GET")
	admin.HandleFunc("/users/{id}/status", h.UpdateStatus).Methods("PUT")
	admin.HandleFunc("/users/{id}/subscription", h.UpdateSubscription).Methods("PUT")
}

// UserView is a subscriber record plus the derived countdown the admin list
// renders next to it.
type UserView struct {
	models.User
	Subscription *SubscriptionView `json:"subscription,omitempty"`
}

func newUserView(user models.User, now time.Time) UserView {
	return UserView{User: user, Subscription: subscriptionViewFor(&user, now)}
}

// Me returns the caller's own profile and countdown state.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetByPhone(claims.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to load profile", zap.Error(err))
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newUserView(user, time.Now()))
}

// List returns all subscribers, optionally filtered by a phone or name
// substring via ?search=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, newUserView(user, now))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// UpdateStatusRequest is the request body for a status change.
type UpdateStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

// UpdateStatus moves an account between FREE, ACTIVE and BLOCKED.
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			http.Error(w, "Invalid status", http.StatusBadRequest)
		case errors.Is(err, gorm.ErrRecordNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Error("Failed to update status", zap.Error(err))
			http.Error(w, "Failed to update status", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newUserView(user, time.Now()))
}

// UpdateSubscriptionRequest is the request body for setting the subscription
// end date. A null endDate clears it.
type UpdateSubscriptionRequest struct {
	EndDate *time.Time `json:"endDate"`
}

// UpdateSubscription sets or clears the account's subscription end date.
func (h *UserHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateSubscription(id, req.EndDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to update subscription", zap.Error(err))
		http.Error(w, "Failed to update subscription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newUserView(user, time.Now()))
}
