package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stock-advisor-go/internal/models"
)

func closedTrade(segment models.Segment, plPct float64) models.Trade {
	pl := plPct
	return models.Trade{
		Symbol:            "X",
		Segment:           segment,
		Status:            models.TradeStatusClosed,
		ProfitLossPercent: &pl,
	}
}

func TestAggregate(t *testing.T) {
	t.Run("Empty input is a defined case", func(t *testing.T) {
		stats, skipped := Aggregate(nil)
		assert.Equal(t, SegmentStats{Total: 0, Profitable: 0, Losing: 0, Accuracy: 0}, stats)
		assert.Equal(t, 0, skipped)
	})

	t.Run("Six winners out of ten", func(t *testing.T) {
		var trades []models.Trade
		for i := 0; i < 6; i++ {
			trades = append(trades, closedTrade(models.SegmentEquity, 2.5))
		}
		for i := 0; i < 4; i++ {
			trades = append(trades, closedTrade(models.SegmentEquity, -1.2))
		}

		stats, skipped := Aggregate(trades)
		assert.Equal(t, 0, skipped)
		assert.Equal(t, 10, stats.Total)
		assert.Equal(t, 6, stats.Profitable)
		assert.Equal(t, 4, stats.Losing)
		assert.Equal(t, 60, stats.Accuracy)
	})

	t.Run("Flat close counts as losing", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(models.SegmentEquity, 0),
			closedTrade(models.SegmentEquity, 4),
		}

		stats, _ := Aggregate(trades)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 1, stats.Profitable)
		assert.Equal(t, 1, stats.Losing)
		assert.Equal(t, 50, stats.Accuracy)
	})

	t.Run("Malformed records are skipped, not fatal", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(models.SegmentEquity, 3),
			{Symbol: "Y", Status: models.TradeStatusClosed}, // closed but no frozen P/L
			{Symbol: "Z", Status: models.TradeStatusActive}, // not closed at all
		}

		stats, skipped := Aggregate(trades)
		assert.Equal(t, 2, skipped)
		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, 100, stats.Accuracy)
	})
}

func TestFilterSegmentDefaultFill(t *testing.T) {
	// A record with no stored segment and one stored as EQUITY must land in the
	// same bucket in every call path.
	legacy := closedTrade("", 1)
	modern := closedTrade(models.SegmentEquity, -1)
	futures := closedTrade(models.SegmentFutures, 2)

	equity := FilterSegment([]models.Trade{legacy, modern, futures}, models.SegmentEquity)
	assert.Len(t, equity, 2)

	stats, _ := Aggregate(equity)
	assert.Equal(t, 2, stats.Total)
}

func TestBuildReport(t *testing.T) {
	trades := []models.Trade{
		closedTrade(models.SegmentEquity, 5),
		closedTrade("", -2), // legacy equity record
		closedTrade(models.SegmentFutures, 1),
		closedTrade(models.SegmentFutures, -1),
		closedTrade(models.SegmentFutures, -3),
		closedTrade(models.SegmentOptions, 8),
	}

	report := BuildReport(trades)

	assert.Equal(t, 6, report.Overall.Total)
	assert.Equal(t, 3, report.Overall.Profitable)
	// 3/6 = 50%. Averaging the per-segment accuracies (50, 33, 100) would give
	// 61 instead; overall must come from the full set.
	assert.Equal(t, 50, report.Overall.Accuracy)

	assert.Equal(t, SegmentStats{Total: 2, Profitable: 1, Losing: 1, Accuracy: 50}, report.Equity)
	assert.Equal(t, SegmentStats{Total: 3, Profitable: 1, Losing: 2, Accuracy: 33}, report.Futures)
	assert.Equal(t, SegmentStats{Total: 1, Profitable: 1, Losing: 0, Accuracy: 100}, report.Options)
	assert.Equal(t, 0, report.Skipped)
}
