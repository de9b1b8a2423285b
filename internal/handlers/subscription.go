package handlers

import (
	"time"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/models"
)

// SubscriptionView is the derived countdown state shipped to both UIs so
// neither re-derives days or severity on its own.
type SubscriptionView struct {
	DaysRemaining int          `json:"daysRemaining"`
	Tier          advisor.Tier `json:"tier"`
	Blink         bool         `json:"blink"`
	EndDate       *time.Time   `json:"endDate,omitempty"`
}

// subscriptionViewFor computes the countdown for a user, or nil when there is
// nothing to show: only ACTIVE accounts with an end date get a countdown.
func subscriptionViewFor(user *models.User, now time.Time) *SubscriptionView {
	if user.Status != models.UserStatusActive {
		return nil
	}
	days, tier, ok := advisor.Evaluate(user.SubscriptionEndDate, now)
	if !ok {
		return nil
	}
	return &SubscriptionView{
		DaysRemaining: days,
		Tier:          tier,
		Blink:         advisor.ShouldBlink(days),
		EndDate:       user.SubscriptionEndDate,
	}
}
