package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/config"
	"stock-advisor-go/internal/models"
	"stock-advisor-go/internal/push"
	"stock-advisor-go/internal/service"
)

const (
	notificationTitle = "📈 New Trade Alert"
	notificationSound = "default"
)

// Notifier watches the set of open trade calls and delivers one push
// notification per newly-posted trade to every ACTIVE subscriber with a
// registered device. Dedupe is snapshot-based: the first poll after startup
// only primes the tracked set, so a restart never re-notifies existing trades.
type Notifier struct {
	logger  *zap.Logger
	cfg     *config.Config
	trades  service.TradeService
	users   service.UserService
	sender  push.Sender
	deduper *advisor.Deduper
}

// NewNotifier creates a new notifier.
func NewNotifier(logger *zap.Logger, cfg *config.Config, trades service.TradeService,
	users service.UserService, sender push.Sender) *Notifier {
	return &Notifier{
		logger:  logger,
		cfg:     cfg,
		trades:  trades,
		users:   users,
		sender:  sender,
		deduper: advisor.NewDeduper(),
	}
}

// Run starts the notifier's polling loop.
func (n *Notifier) Run(ctx context.Context) {
	interval := time.Duration(n.cfg.Notifier.PollIntervalSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	n.logger.Info("Starting notifier loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("Stopping notifier...")
			return
		case <-ticker.C:
			if err := n.Poll(ctx); err != nil {
				n.logger.Error("Notifier poll failed", zap.Error(err))
			}
		}
	}
}

// Poll takes one snapshot of the open trades and pushes alerts for the
// newly-appeared ones. On any fetch error the deduper state is left untouched
// so the next poll re-evaluates the same difference.
func (n *Notifier) Poll(ctx context.Context) error {
	trades, err := n.trades.ListActive()
	if err != nil {
		return fmt.Errorf("could not snapshot active trades: %w", err)
	}

	tokens, err := n.users.ActivePushTokens()
	if err != nil {
		return fmt.Errorf("could not load subscriber tokens: %w", err)
	}

	byID := make(map[string]*models.Trade, len(trades))
	ids := make([]string, 0, len(trades))
	for i := range trades {
		byID[trades[i].ID] = &trades[i]
		ids = append(ids, trades[i].ID)
	}

	newIDs := n.deduper.ProcessSnapshot(ids)
	if len(newIDs) == 0 {
		return nil
	}

	if len(tokens) == 0 {
		n.logger.Warn("New trades posted but no subscriber tokens registered",
			zap.Int("trades", len(newIDs)))
		return nil
	}

	var messages []push.Message
	for _, id := range newIDs {
		trade := byID[id]
		body := fmt.Sprintf("New trade posted — %s %s", trade.Symbol, trade.Action)
		for _, token := range tokens {
			messages = append(messages, push.Message{
				To:    token,
				Sound: notificationSound,
				Title: notificationTitle,
				Body:  body,
				Data:  map[string]string{"screen": "active-trades", "tradeId": id},
			})
		}
	}

	tickets, err := n.sender.Send(ctx, messages)
	if err != nil {
		return fmt.Errorf("push delivery failed: %w", err)
	}

	failed := 0
	for _, ticket := range tickets {
		if ticket.Status != "ok" {
			failed++
		}
	}

	n.logger.Info("Notified subscribers of new trades",
		zap.Int("new_trades", len(newIDs)),
		zap.Int("messages", len(messages)),
		zap.Int("failed_tickets", failed))
	return nil
}
