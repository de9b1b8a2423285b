package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"stock-advisor-go/internal/push"
)

// NotifyHandler is the push relay: the admin console hands it device tokens
// and a stock name, and it forwards the composed alert to the gateway. Manual
// follow-ups (target hit, stop-loss hit) go through here; automatic new-trade
// alerts come from the notifier daemon instead.
type NotifyHandler struct {
	sender push.Sender
	logger *zap.Logger
}

// NewNotifyHandler creates a new notify handler.
func NewNotifyHandler(sender push.Sender, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{sender: sender, logger: logger}
}

// RegisterRoutes registers the relay on the admin router.
func (h *NotifyHandler) RegisterRoutes(admin *mux.Router) {
	admin.HandleFunc("/notify", h.Notify).Methods("POST")
}

// NotifyRequest is the request body for a manual push.
type NotifyRequest struct {
	Tokens    []string `json:"tokens"`
	StockName string   `json:"stockName"`
	Type      string   `json:"type"`
}

// NotifyResponse reports gateway acceptance per message.
type NotifyResponse struct {
	Sent    int           `json:"sent"`
	Failed  int           `json:"failed"`
	Tickets []push.Ticket `json:"tickets"`
}

func (h *NotifyHandler) composeBody(req NotifyRequest) string {
	switch req.Type {
	case "target_hit":
		return fmt.Sprintf("🎯 Target hit on %s! Check your positions.", req.StockName)
	case "stoploss_hit":
		return fmt.Sprintf("⚠️ Stop loss triggered on %s.", req.StockName)
	default:
		return fmt.Sprintf("Update on %s — open the app for details.", req.StockName)
	}
}

// Notify forwards one alert to every given device token.
func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		len(req.Tokens) == 0 || req.StockName == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	body := h.composeBody(req)
	messages := make([]push.Message, 0, len(req.Tokens))
	for _, token := range req.Tokens {
		messages = append(messages, push.Message{
			To:    token,
			Sound: "default",
			Title: "📈 Trade Update",
			Body:  body,
			Data:  map[string]string{"screen": "active-trades"},
		})
	}

	tickets, err := h.sender.Send(r.Context(), messages)
	if err != nil {
		h.logger.Error("Push relay failed", zap.Error(err))
		http.Error(w, "Push delivery failed", http.StatusBadGateway)
		return
	}

	resp := NotifyResponse{Tickets: tickets}
	for _, ticket := range tickets {
		if ticket.Status == "ok" {
			resp.Sent++
		} else {
			resp.Failed++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
