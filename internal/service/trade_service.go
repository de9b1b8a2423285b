package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/models"
)

// ErrAlreadyClosed is returned when closing a trade that has already been
// closed. ACTIVE -> CLOSED is a one-way transition; there is no reopen.
var ErrAlreadyClosed = errors.New("trade already closed")

// TradeService defines the operations on trade calls.
type TradeService interface {
	Create(raw advisor.RawTrade) (models.Trade, error)
	Get(id string) (models.Trade, error)
	ListActive() ([]models.Trade, error)
	ListClosed() ([]models.Trade, error)
	ActiveIDs() ([]string, error)
	Close(id string, exitPrice float64, now time.Time) (models.Trade, error)
	Delete(id string) error
}

type tradeService struct {
	db *gorm.DB
}

// NewTradeService creates a new trade service.
func NewTradeService(db *gorm.DB) TradeService {
	return &tradeService{db: db}
}

// Create normalizes the incoming trade call and persists it as ACTIVE. The ID
// is assigned here; any ID on the raw input is ignored.
func (s *tradeService) Create(raw advisor.RawTrade) (models.Trade, error) {
	raw.ID = ""
	raw.Status = models.TradeStatusActive
	if raw.CreatedAt.IsZero() {
		raw.CreatedAt = time.Now()
	}

	trade, err := advisor.Normalize(raw)
	if err != nil {
		return models.Trade{}, err
	}
	trade.ID = ulid.Make().String()

	if err := s.db.Create(&trade).Error; err != nil {
		return models.Trade{}, fmt.Errorf("failed to create trade: %w", err)
	}
	return trade, nil
}

func (s *tradeService) Get(id string) (models.Trade, error) {
	var trade models.Trade
	err := s.db.First(&trade, "id = ?", id).Error
	return trade, err
}

// ListActive returns open trade calls, newest first.
func (s *tradeService) ListActive() ([]models.Trade, error) {
	var trades []models.Trade
	err := s.db.Where("status = ?", models.TradeStatusActive).
		Order("created_at desc").Find(&trades).Error
	return trades, err
}

// ListClosed returns closed trade calls, most recently closed first.
func (s *tradeService) ListClosed() ([]models.Trade, error) {
	var trades []models.Trade
	err := s.db.Where("status = ?", models.TradeStatusClosed).
		Order("closed_at desc").Find(&trades).Error
	return trades, err
}

// ActiveIDs returns the current snapshot of open trade IDs in creation order,
// for the notifier's deduper.
func (s *tradeService) ActiveIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.Trade{}).
		Where("status = ?", models.TradeStatusActive).
		Order("created_at").Pluck("id", &ids).Error
	return ids, err
}

// Close computes the realized P/L, freezes it onto the record together with
// the exit price and close time, and flips the status. The persisted figure is
// the rounded one; downstream aggregation reads it back as-is.
func (s *tradeService) Close(id string, exitPrice float64, now time.Time) (models.Trade, error) {
	var trade models.Trade
	if err := s.db.First(&trade, "id = ?", id).Error; err != nil {
		return models.Trade{}, err
	}
	if trade.Closed() {
		return models.Trade{}, ErrAlreadyClosed
	}

	realized, err := advisor.RealizedPct(trade.EntryPrice, exitPrice)
	if err != nil {
		return models.Trade{}, err
	}

	trade.Status = models.TradeStatusClosed
	trade.ExitPrice = &exitPrice
	trade.ProfitLossPercent = &realized
	trade.ClosedAt = &now

	if err := s.db.Save(&trade).Error; err != nil {
		return models.Trade{}, fmt.Errorf("failed to close trade: %w", err)
	}
	return trade, nil
}

func (s *tradeService) Delete(id string) error {
	return s.db.Delete(&models.Trade{}, "id = ?", id).Error
}
