package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stock-advisor-go/internal/config"
	"stock-advisor-go/internal/middleware"
	"stock-advisor-go/internal/models"
	"stock-advisor-go/internal/service"
)

// AuthHandler handles login and session establishment. Phone verification
// itself (OTP) is delegated to the managed auth provider in front of this API;
// by the time a login request arrives the phone number is considered proven.
type AuthHandler struct {
	users  service.UserService
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users service.UserService, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg, logger: logger}
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Phone     string `json:"phone"`
	PushToken string `json:"pushToken,omitempty"`
}

// LoginResponse carries the session token plus the freshly loaded profile.
type LoginResponse struct {
	Token        string            `json:"token"`
	User         models.User       `json:"user"`
	Subscription *SubscriptionView `json:"subscription,omitempty"`
}

// Login provisions the account on first use and issues a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetOrCreate(req.Phone, req.PushToken)
	if err != nil {
		h.logger.Error("Login failed", zap.Error(err))
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	role := middleware.RoleSubscriber
	for _, admin := range h.cfg.Auth.AdminPhones {
		if admin == user.Phone {
			role = middleware.RoleAdmin
			break
		}
	}

	ttl := time.Duration(h.cfg.Auth.TokenTTLHours) * time.Hour
	token, err := middleware.IssueToken([]byte(h.cfg.Auth.JWTSecret), user.Phone, role, ttl)
	if err != nil {
		h.logger.Error("Token issuing failed", zap.Error(err))
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Token:        token,
		User:         user,
		Subscription: subscriptionViewFor(&user, time.Now()),
	})
}
