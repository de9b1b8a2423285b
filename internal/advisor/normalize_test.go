package advisor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stock-advisor-go/internal/models"
)

func TestNormalize(t *testing.T) {
	createdAt := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		raw         RawTrade
		expected    models.Trade
		expectError bool
		errorField  string
	}{
		{
			name: "Numbers arrive as strings",
			raw: RawTrade{
				ID:          "t1",
				Symbol:      "reliance",
				Action:      "buy",
				EntryPrice:  "2500.50",
				TargetPrice: "2600",
				StopLoss:    "2450",
				CreatedAt:   createdAt,
			},
			expected: models.Trade{
				ID:          "t1",
				Symbol:      "RELIANCE",
				Segment:     models.SegmentEquity,
				Action:      "BUY",
				EntryPrice:  2500.50,
				TargetPrice: 2600,
				StopLoss:    2450,
				Status:      models.TradeStatusActive,
				CreatedAt:   createdAt,
			},
		},
		{
			name: "Missing segment defaults to equity",
			raw: RawTrade{
				ID:          "t2",
				Symbol:      "  TCS ",
				Action:      "SELL",
				EntryPrice:  4100.0,
				TargetPrice: 4000.0,
				CreatedAt:   createdAt,
			},
			expected: models.Trade{
				ID:          "t2",
				Symbol:      "TCS",
				Segment:     models.SegmentEquity,
				Action:      "SELL",
				EntryPrice:  4100,
				TargetPrice: 4000,
				Status:      models.TradeStatusActive,
				CreatedAt:   createdAt,
			},
		},
		{
			name: "Lowercase segment from mobile schema",
			raw: RawTrade{
				ID:          "t3",
				Symbol:      "NIFTY",
				Segment:     "futures",
				Action:      "BUY",
				EntryPrice:  22000,
				TargetPrice: 22300,
				LotSize:     "50",
				CreatedAt:   createdAt,
			},
			expected: models.Trade{
				ID:          "t3",
				Symbol:      "NIFTY",
				Segment:     models.SegmentFutures,
				Action:      "BUY",
				EntryPrice:  22000,
				TargetPrice: 22300,
				LotSize:     50,
				Status:      models.TradeStatusActive,
				CreatedAt:   createdAt,
			},
		},
		{
			name: "Unknown segment defaults to equity",
			raw: RawTrade{
				ID:          "t4",
				Symbol:      "INFY",
				Segment:     "commodity",
				Action:      "BUY",
				EntryPrice:  1500,
				TargetPrice: 1550,
				CreatedAt:   createdAt,
			},
			expected: models.Trade{
				ID:          "t4",
				Symbol:      "INFY",
				Segment:     models.SegmentEquity,
				Action:      "BUY",
				EntryPrice:  1500,
				TargetPrice: 1550,
				Status:      models.TradeStatusActive,
				CreatedAt:   createdAt,
			},
		},
		{
			name: "Empty symbol after trimming",
			raw: RawTrade{
				Symbol:      "   ",
				Action:      "BUY",
				EntryPrice:  100,
				TargetPrice: 110,
			},
			expectError: true,
			errorField:  "symbol",
		},
		{
			name: "Non-numeric entry price",
			raw: RawTrade{
				Symbol:      "SBIN",
				Action:      "BUY",
				EntryPrice:  "abc",
				TargetPrice: 110,
			},
			expectError: true,
			errorField:  "entryPrice",
		},
		{
			name: "Missing target price",
			raw: RawTrade{
				Symbol:     "SBIN",
				Action:     "BUY",
				EntryPrice: 100,
			},
			expectError: true,
			errorField:  "targetPrice",
		},
		{
			name: "Closed trade without realized P/L",
			raw: RawTrade{
				Symbol:      "SBIN",
				Action:      "BUY",
				EntryPrice:  100,
				TargetPrice: 110,
				Status:      "CLOSED",
				ExitPrice:   108.0,
			},
			expectError: true,
			errorField:  "profitLossPercent",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade, err := Normalize(tc.raw)

			if tc.expectError {
				var vErr *ValidationError
				assert.Error(t, err)
				assert.True(t, errors.As(err, &vErr))
				assert.Equal(t, tc.errorField, vErr.Field)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, trade)
		})
	}
}

func TestNormalizeClosedTrade(t *testing.T) {
	closedAt := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	raw := RawTrade{
		ID:                "t9",
		Symbol:            "HDFCBANK",
		Action:            "BUY",
		EntryPrice:        "1600",
		TargetPrice:       "1700",
		Status:            "closed",
		ExitPrice:         "1680",
		ProfitLossPercent: "5",
		ClosedAt:          &closedAt,
	}

	trade, err := Normalize(raw)
	assert.NoError(t, err)
	assert.Equal(t, models.TradeStatusClosed, trade.Status)
	if assert.NotNil(t, trade.ExitPrice) {
		assert.Equal(t, 1680.0, *trade.ExitPrice)
	}
	if assert.NotNil(t, trade.ProfitLossPercent) {
		assert.Equal(t, 5.0, *trade.ProfitLossPercent)
	}
	assert.Equal(t, &closedAt, trade.ClosedAt)
}

// Normalizing the raw form of an already-canonical trade must be a no-op.
func TestNormalizeIdempotent(t *testing.T) {
	raw := RawTrade{
		ID:          "t5",
		Symbol:      " itc",
		Segment:     "options",
		Action:      "buy",
		EntryPrice:  "410.25",
		TargetPrice: "430",
		StopLoss:    "400",
		StrikePrice: "420",
		OptionType:  "ce",
		CreatedAt:   time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}

	once, err := Normalize(raw)
	assert.NoError(t, err)

	twice, err := Normalize(RawTrade{
		ID:          once.ID,
		Symbol:      once.Symbol,
		Segment:     string(once.Segment),
		Action:      once.Action,
		EntryPrice:  once.EntryPrice,
		TargetPrice: once.TargetPrice,
		StopLoss:    once.StopLoss,
		LotSize:     once.LotSize,
		StrikePrice: once.StrikePrice,
		OptionType:  once.OptionType,
		ExpiryDate:  once.ExpiryDate,
		Duration:    once.Duration,
		Status:      once.Status,
		CreatedAt:   once.CreatedAt,
	})
	assert.NoError(t, err)
	assert.Equal(t, once, twice)
}
