package models

import "time"

// Segment is the trade instrument category.
type Segment string

const (
	SegmentEquity  Segment = "EQUITY"
	SegmentFutures Segment = "FUTURES"
	SegmentOptions Segment = "OPTIONS"
)

// Trade action sides.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Trade lifecycle states. The only transition is ACTIVE -> CLOSED.
const (
	TradeStatusActive = "ACTIVE"
	TradeStatusClosed = "CLOSED"
)

// Option contract types, relevant only for the OPTIONS segment.
const (
	OptionTypeCall = "CE"
	OptionTypePut  = "PE"
)

// Trade represents a trade call in the database, in the canonical
// post-normalization shape. ExitPrice, ProfitLossPercent and ClosedAt are set
// exactly once at close time; an ACTIVE record never carries them.
type Trade struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	Symbol      string  `json:"symbol"`
	Segment     Segment `json:"segment"`
	Action      string  `json:"action"` // "BUY" or "SELL"
	EntryPrice  float64 `json:"entryPrice"`
	TargetPrice float64 `json:"targetPrice"`
	StopLoss    float64 `json:"stopLoss"` // zero means "no stop", not a zero-risk trade

	// Derivative metadata, zero-valued for the EQUITY segment.
	LotSize     int        `json:"lotSize,omitempty"`
	StrikePrice float64    `json:"strikePrice,omitempty"`
	OptionType  string     `json:"optionType,omitempty"` // "CE" or "PE"
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	Duration    string     `json:"duration,omitempty"`

	Status    string    `gorm:"index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	ExitPrice         *float64   `json:"exitPrice,omitempty"`
	ProfitLossPercent *float64   `json:"profitLossPercent,omitempty"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
}

// Closed reports whether the trade has been closed out.
func (t *Trade) Closed() bool {
	return t.Status == TradeStatusClosed
}

// EffectiveSegment returns the trade's segment, defaulting records written by
// legacy equity-only schema versions (no segment stored) to EQUITY. Every
// consumer must bucket through this so the admin and mobile dashboards never
// diverge on totals.
func (t *Trade) EffectiveSegment() Segment {
	if t.Segment == "" {
		return SegmentEquity
	}
	return t.Segment
}
