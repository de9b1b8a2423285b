package advisor

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"stock-advisor-go/internal/models"
)

// RawTrade is a trade record as stored, before normalization. The document
// store accumulated several historical schema versions: numeric fields drift
// between string and number encodings, and the legacy equity-only schema has
// no segment field at all. Normalize is the single migration boundary; nothing
// downstream may special-case these shapes.
type RawTrade struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Segment     string `json:"segment,omitempty"`
	Action      string `json:"action"`
	EntryPrice  any    `json:"entryPrice"`
	TargetPrice any    `json:"targetPrice"`
	StopLoss    any    `json:"stopLoss,omitempty"`

	LotSize     any        `json:"lotSize,omitempty"`
	StrikePrice any        `json:"strikePrice,omitempty"`
	OptionType  string     `json:"optionType,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	Duration    string     `json:"duration,omitempty"`

	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	ExitPrice         any        `json:"exitPrice,omitempty"`
	ProfitLossPercent any        `json:"profitLossPercent,omitempty"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
}

// Normalize coerces a raw stored trade into the canonical shape. It is
// idempotent: normalizing the raw form of an already-canonical trade yields
// the same trade. A *ValidationError is returned when a required numeric field
// does not coerce or the symbol is empty after trimming.
func Normalize(raw RawTrade) (models.Trade, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw.Symbol))
	if symbol == "" {
		return models.Trade{}, validationErrorf("symbol", "empty after trimming")
	}

	entry, err := requiredNumber("entryPrice", raw.EntryPrice)
	if err != nil {
		return models.Trade{}, err
	}
	target, err := requiredNumber("targetPrice", raw.TargetPrice)
	if err != nil {
		return models.Trade{}, err
	}
	// Absent or unparseable stop loss means "no stop"; risk is undefined, not an error.
	stop := optionalNumber(raw.StopLoss)

	status := strings.ToUpper(strings.TrimSpace(raw.Status))
	if status == "" {
		status = models.TradeStatusActive
	}

	trade := models.Trade{
		ID:          raw.ID,
		Symbol:      symbol,
		Segment:     normalizeSegment(raw.Segment),
		Action:      strings.ToUpper(strings.TrimSpace(raw.Action)),
		EntryPrice:  entry,
		TargetPrice: target,
		StopLoss:    stop,
		LotSize:     int(optionalNumber(raw.LotSize)),
		StrikePrice: optionalNumber(raw.StrikePrice),
		OptionType:  strings.ToUpper(strings.TrimSpace(raw.OptionType)),
		ExpiryDate:  raw.ExpiryDate,
		Duration:    raw.Duration,
		Status:      status,
		CreatedAt:   raw.CreatedAt,
		ClosedAt:    raw.ClosedAt,
	}

	// A CLOSED record always carries its exit price and frozen realized P/L.
	if trade.Status == models.TradeStatusClosed {
		exit, err := requiredNumber("exitPrice", raw.ExitPrice)
		if err != nil {
			return models.Trade{}, err
		}
		plPct, err := requiredNumber("profitLossPercent", raw.ProfitLossPercent)
		if err != nil {
			return models.Trade{}, err
		}
		trade.ExitPrice = &exit
		trade.ProfitLossPercent = &plPct
	}

	return trade, nil
}

// normalizeSegment maps stored segment values, in any casing, onto the segment
// enum. Absent or unknown values default to EQUITY so legacy equity-only
// records land in the same bucket everywhere.
func normalizeSegment(s string) models.Segment {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(models.SegmentFutures):
		return models.SegmentFutures
	case string(models.SegmentOptions):
		return models.SegmentOptions
	default:
		return models.SegmentEquity
	}
}

func requiredNumber(field string, v any) (float64, error) {
	if v == nil {
		return 0, validationErrorf(field, "missing")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, validationErrorf(field, "not a number: %v", v)
	}
	return f, nil
}

func optionalNumber(v any) float64 {
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}
