package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/middleware"
	"stock-advisor-go/internal/models"
	"stock-advisor-go/internal/service"
	"stock-advisor-go/internal/ws"
)

// TradeHandler serves the trade-call endpoints for both surfaces: the admin
// console mutates calls, the mobile app reads them.
type TradeHandler struct {
	trades service.TradeService
	users  service.UserService
	hub    *ws.Hub
	logger *zap.Logger
}

// NewTradeHandler creates a new trade handler.
func NewTradeHandler(trades service.TradeService, users service.UserService,
	hub *ws.Hub, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{trades: trades, users: users, hub: hub, logger: logger}
}

// RegisterRoutes registers trade routes on the authenticated and admin routers.
func (h *TradeHandler) RegisterRoutes(api, admin *mux.Router) {
	api.HandleFunc("/trades/active", h.ListActive).Methods("GET")
	api.HandleFunc("/trades/closed", h.ListClosed).Methods("GET")

	admin.HandleFunc("/trades", h.Create).Methods("POST")
	admin.HandleFunc("/trades/{id}/close", h.Close).Methods("POST")
	admin.HandleFunc("/trades/{id}", h.Delete).Methods("DELETE")
}

// ActiveTradeView is a trade call enriched with the derived figures the
// clients render but never compute themselves.
type ActiveTradeView struct {
	models.Trade
	PotentialGainPct float64  `json:"potentialGainPct"`
	RiskPct          *float64 `json:"riskPct,omitempty"`
}

func newActiveTradeView(trade models.Trade) ActiveTradeView {
	view := ActiveTradeView{Trade: trade}
	if gain, err := advisor.PotentialGainPct(trade.EntryPrice, trade.TargetPrice); err == nil {
		view.PotentialGainPct = gain
	}
	if risk, ok, err := advisor.RiskPct(trade.EntryPrice, trade.StopLoss); err == nil && ok {
		view.RiskPct = &risk
	}
	return view
}

// ListActive returns the open trade calls. Only paying subscribers (and
// admins) see them; FREE accounts get a 403 prompting an upgrade.
func (h *TradeHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if claims.Role != middleware.RoleAdmin {
		user, err := h.users.GetByPhone(claims.Phone)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		switch user.Status {
		case models.UserStatusBlocked:
			http.Error(w, "Account blocked", http.StatusForbidden)
			return
		case models.UserStatusActive:
		default:
			http.Error(w, "Subscription required", http.StatusForbidden)
			return
		}
	}

	trades, err := h.trades.ListActive()
	if err != nil {
		h.logger.Error("Failed to list active trades", zap.Error(err))
		http.Error(w, "Failed to list trades", http.StatusInternalServerError)
		return
	}

	views := make([]ActiveTradeView, 0, len(trades))
	for _, trade := range trades {
		views = append(views, newActiveTradeView(trade))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// ListClosed returns the historical record. It is visible to every
// authenticated account regardless of subscription status.
func (h *TradeHandler) ListClosed(w http.ResponseWriter, r *http.Request) {
	trades, err := h.trades.ListClosed()
	if err != nil {
		h.logger.Error("Failed to list closed trades", zap.Error(err))
		http.Error(w, "Failed to list trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

// Create posts a new trade call and announces it on the live feed.
func (h *TradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var raw advisor.RawTrade
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	trade, err := h.trades.Create(raw)
	if err != nil {
		var verr *advisor.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to create trade", zap.Error(err))
		http.Error(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(ws.Event{Type: ws.EventNewTrade, Content: newActiveTradeView(trade)})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newActiveTradeView(trade))
}

// CloseTradeRequest is the request body for closing a trade call.
type CloseTradeRequest struct {
	ExitPrice float64 `json:"exitPrice"`
}

// Close settles a trade call at the given exit price. The realized P/L is
// computed and frozen here; re-closing is rejected.
func (h *TradeHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req CloseTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	trade, err := h.trades.Close(id, req.ExitPrice, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			http.Error(w, "Trade not found", http.StatusNotFound)
		case errors.Is(err, service.ErrAlreadyClosed):
			http.Error(w, "Trade already closed", http.StatusConflict)
		default:
			var verr *advisor.ValidationError
			if errors.As(err, &verr) {
				http.Error(w, verr.Error(), http.StatusBadRequest)
				return
			}
			h.logger.Error("Failed to close trade", zap.Error(err))
			http.Error(w, "Failed to close trade", http.StatusInternalServerError)
		}
		return
	}

	h.hub.Broadcast(ws.Event{Type: ws.EventClosedTrade, Content: trade})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trade)
}

// Delete removes a trade call outright. Meant for typos, not settlements.
func (h *TradeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.trades.Get(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Trade not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to load trade", zap.Error(err))
		http.Error(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	if err := h.trades.Delete(id); err != nil {
		h.logger.Error("Failed to delete trade", zap.Error(err))
		http.Error(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
