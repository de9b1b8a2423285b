package advisor

import (
	"math"

	"stock-advisor-go/internal/models"
)

// SegmentStats holds win/loss counts and the accuracy percentage for a set of
// closed trades. Accuracy is a whole-number percentage; an empty set has
// accuracy 0, not NaN.
type SegmentStats struct {
	Total      int `json:"total"`
	Profitable int `json:"profitable"`
	Losing     int `json:"losing"`
	Accuracy   int `json:"accuracy"`
}

// PerformanceReport is the full dashboard breakdown: one overall figure over
// every closed trade plus one per segment. Overall is recomputed from the full
// set, never derived from the per-segment accuracies.
type PerformanceReport struct {
	Overall SegmentStats `json:"overall"`
	Equity  SegmentStats `json:"equity"`
	Futures SegmentStats `json:"futures"`
	Options SegmentStats `json:"options"`

	// Skipped counts records that could not be aggregated (closed with no
	// frozen P/L). Callers log it; aggregation itself never fails a batch.
	Skipped int `json:"-"`
}

// Aggregate computes win/loss stats over a set of trades. A trade counts as
// profitable only when its frozen realized P/L is strictly positive; a flat
// 0% close is a loss by policy. Records that are not closed or carry no
// realized P/L are skipped and counted in the second return value.
func Aggregate(trades []models.Trade) (SegmentStats, int) {
	var stats SegmentStats
	var skipped int

	for i := range trades {
		t := &trades[i]
		if !t.Closed() || t.ProfitLossPercent == nil {
			skipped++
			continue
		}
		stats.Total++
		if *t.ProfitLossPercent > 0 {
			stats.Profitable++
		}
	}

	stats.Losing = stats.Total - stats.Profitable
	if stats.Total > 0 {
		stats.Accuracy = int(math.Round(float64(stats.Profitable) / float64(stats.Total) * 100))
	}
	return stats, skipped
}

// FilterSegment returns the trades belonging to a segment bucket. Records with
// no stored segment belong to EQUITY, matching the normalizer default, so the
// equity bucket always includes legacy records.
func FilterSegment(trades []models.Trade, segment models.Segment) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for i := range trades {
		if trades[i].EffectiveSegment() == segment {
			out = append(out, trades[i])
		}
	}
	return out
}

// BuildReport aggregates the full closed-trade set once overall and once per
// segment.
func BuildReport(trades []models.Trade) PerformanceReport {
	overall, skipped := Aggregate(trades)
	equity, _ := Aggregate(FilterSegment(trades, models.SegmentEquity))
	futures, _ := Aggregate(FilterSegment(trades, models.SegmentFutures))
	options, _ := Aggregate(FilterSegment(trades, models.SegmentOptions))

	return PerformanceReport{
		Overall: overall,
		Equity:  equity,
		Futures: futures,
		Options: options,
		Skipped: skipped,
	}
}
