package models

import "time"

// UserStatus is the subscriber access level.
type UserStatus string

const (
	UserStatusFree    UserStatus = "FREE"
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

// User represents a subscriber account. Accounts are created lazily on first
// successful login with status FREE. Feature gating depends solely on Status;
// SubscriptionEndDate only drives the countdown/severity shown in the UIs.
type User struct {
	ID                  string     `gorm:"primaryKey" json:"id"`
	Phone               string     `gorm:"uniqueIndex" json:"phone"`
	Name                string     `json:"name,omitempty"`
	Status              UserStatus `json:"status"`
	PushToken           string     `json:"pushToken,omitempty"` // most recently registered device token
	CreatedAt           time.Time  `json:"createdAt"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate,omitempty"`
}
