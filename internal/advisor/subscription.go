package advisor

import (
	"math"
	"time"
)

// Tier is the severity bucket derived from subscription days remaining,
// driving badge color and urgency in both UIs.
type Tier string

const (
	TierExpired  Tier = "EXPIRED"
	TierCritical Tier = "CRITICAL"
	TierWarning  Tier = "WARNING"
	TierHealthy  Tier = "HEALTHY"
)

// BlinkThresholdDays is the uniform attention threshold: the countdown badge
// blinks while 0 < days <= 7, matching the CRITICAL tier boundary.
const BlinkThresholdDays = 7

// DaysRemaining returns the whole calendar days from now until the
// subscription end date. Both instants are normalized to midnight in now's
// location before differencing, so an expiry later today is exactly 0
// regardless of time of day.
func DaysRemaining(end, now time.Time) int {
	endMid := midnight(end.In(now.Location()))
	nowMid := midnight(now)
	return int(math.Ceil(endMid.Sub(nowMid).Hours() / 24))
}

// TierFor maps days remaining onto a severity tier. First match wins.
func TierFor(days int) Tier {
	switch {
	case days <= 0:
		return TierExpired
	case days <= 7:
		return TierCritical
	case days <= 15:
		return TierWarning
	default:
		return TierHealthy
	}
}

// ShouldBlink reports whether the countdown badge should be in its blinking
// attention state.
func ShouldBlink(days int) bool {
	return days > 0 && days <= BlinkThresholdDays
}

// Evaluate computes the countdown for an optional subscription end date. A nil
// end date yields ok == false: no countdown is shown, and the account is not
// treated as expired.
func Evaluate(end *time.Time, now time.Time) (days int, tier Tier, ok bool) {
	if end == nil {
		return 0, "", false
	}
	days = DaysRemaining(*end, now)
	return days, TierFor(days), true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
