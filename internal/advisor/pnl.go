package advisor

import "math"

// PotentialGainPct computes the percentage move from entry to target for an
// open trade. entry must be positive for a well-formed record; zero is
// rejected defensively rather than dividing by it.
func PotentialGainPct(entry, target float64) (float64, error) {
	if entry == 0 {
		return 0, validationErrorf("entryPrice", "must not be zero")
	}
	return (target - entry) / entry * 100, nil
}

// RiskPct computes the percentage loss if the stop is hit. A zero or negative
// stop means the trade carries no stop; risk is undefined and ok is false.
func RiskPct(entry, stop float64) (pct float64, ok bool, err error) {
	if entry == 0 {
		return 0, false, validationErrorf("entryPrice", "must not be zero")
	}
	if stop <= 0 {
		return 0, false, nil
	}
	return (entry - stop) / entry * 100, true, nil
}

// RealizedPct computes the realized profit/loss percentage at close time,
// rounded to two decimal places (half away from zero). The rounded figure is
// the value frozen onto the record; aggregation reads it back rather than
// recomputing from entry/exit, so historical displays stay stable.
func RealizedPct(entry, exit float64) (float64, error) {
	if entry == 0 {
		return 0, validationErrorf("entryPrice", "must not be zero")
	}
	raw := (exit - entry) / entry * 100
	return math.Round(raw*100) / 100, nil
}
