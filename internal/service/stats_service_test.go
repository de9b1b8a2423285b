package service

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/models"
)

func rawTrade(symbol string) advisor.RawTrade {
	return advisor.RawTrade{
		Symbol:      symbol,
		Action:      models.ActionBuy,
		EntryPrice:  100,
		TargetPrice: 110,
	}
}

func seedClosedTrade(t *testing.T, db *gorm.DB, segment models.Segment, plPct float64) {
	t.Helper()
	pl := plPct
	exit := 100 + plPct
	closedAt := time.Now()
	trade := models.Trade{
		ID:                ulid.Make().String(),
		Symbol:            "X",
		Segment:           segment,
		Action:            models.ActionBuy,
		EntryPrice:        100,
		TargetPrice:       110,
		Status:            models.TradeStatusClosed,
		CreatedAt:         time.Now(),
		ExitPrice:         &exit,
		ProfitLossPercent: &pl,
		ClosedAt:          &closedAt,
	}
	assert.NoError(t, db.Create(&trade).Error)
}

func TestStatsService_Dashboard(t *testing.T) {
	db := setupDB(t)
	users := NewUserService(db, zap.NewNop())
	trades := NewTradeService(db)
	stats := NewStatsService(db, nil, 0, zap.NewNop())

	u, err := users.GetOrCreate("+911", "")
	assert.NoError(t, err)
	_, err = users.UpdateStatus(u.ID, models.UserStatusActive)
	assert.NoError(t, err)
	_, err = users.GetOrCreate("+912", "")
	assert.NoError(t, err)

	tr, err := trades.Create(rawTrade("A"))
	assert.NoError(t, err)
	_, err = trades.Create(rawTrade("B"))
	assert.NoError(t, err)
	_, err = trades.Close(tr.ID, 110, time.Now())
	assert.NoError(t, err)

	got, err := stats.Dashboard(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, DashboardStats{
		TotalUsers:   2,
		FreeUsers:    1,
		ActiveUsers:  1,
		BlockedUsers: 0,
		ActiveTrades: 1,
		ClosedTrades: 1,
	}, got)
}

func TestStatsService_PerformanceWithoutCache(t *testing.T) {
	db := setupDB(t)
	stats := NewStatsService(db, nil, 0, zap.NewNop())

	seedClosedTrade(t, db, models.SegmentEquity, 5)
	seedClosedTrade(t, db, "", -2) // legacy record with no segment
	seedClosedTrade(t, db, models.SegmentFutures, 3)

	report, err := stats.Performance(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 3, report.Overall.Total)
	assert.Equal(t, 2, report.Overall.Profitable)
	assert.Equal(t, 67, report.Overall.Accuracy)

	// The legacy record lands in the equity bucket alongside the tagged one.
	assert.Equal(t, 2, report.Equity.Total)
	assert.Equal(t, 1, report.Futures.Total)
	assert.Equal(t, 0, report.Options.Total)
}
