package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"stock-advisor-go/internal/models"
)

func TestUserService_GetOrCreateProvisionsLazily(t *testing.T) {
	svc := NewUserService(setupDB(t), zap.NewNop())

	user, err := svc.GetOrCreate("+919876543210", "ExponentPushToken[abc]")
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.UserStatusFree, user.Status)
	assert.Equal(t, "ExponentPushToken[abc]", user.PushToken)

	// Second login with a new device replaces the token but keeps the account.
	again, err := svc.GetOrCreate("+919876543210", "ExponentPushToken[def]")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "ExponentPushToken[def]", again.PushToken)

	users, err := svc.List("")
	assert.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_ListSearch(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(db, zap.NewNop())

	_, err := svc.GetOrCreate("+911111111111", "")
	assert.NoError(t, err)
	_, err = svc.GetOrCreate("+922222222222", "")
	assert.NoError(t, err)

	users, err := svc.List("2222")
	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "+922222222222", users[0].Phone)
	}
}

func TestUserService_UpdateStatus(t *testing.T) {
	svc := NewUserService(setupDB(t), zap.NewNop())

	user, err := svc.GetOrCreate("+911234567890", "")
	assert.NoError(t, err)

	updated, err := svc.UpdateStatus(user.ID, models.UserStatusActive)
	assert.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, updated.Status)

	_, err = svc.UpdateStatus(user.ID, "PREMIUM")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUserService_ActivePushTokens(t *testing.T) {
	svc := NewUserService(setupDB(t), zap.NewNop())

	active, err := svc.GetOrCreate("+911000000001", "token-active")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(active.ID, models.UserStatusActive)
	assert.NoError(t, err)

	// FREE user with a token: must not receive pushes.
	_, err = svc.GetOrCreate("+911000000002", "token-free")
	assert.NoError(t, err)

	// ACTIVE user with no token registered.
	noToken, err := svc.GetOrCreate("+911000000003", "")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(noToken.ID, models.UserStatusActive)
	assert.NoError(t, err)

	tokens, err := svc.ActivePushTokens()
	assert.NoError(t, err)
	assert.Equal(t, []string{"token-active"}, tokens)
}

func TestUserService_DowngradeExpired(t *testing.T) {
	svc := NewUserService(setupDB(t), zap.NewNop())
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	expiredEnd := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)
	todayEnd := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	futureEnd := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	expired, err := svc.GetOrCreate("+911000000010", "")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(expired.ID, models.UserStatusActive)
	assert.NoError(t, err)
	_, err = svc.UpdateSubscription(expired.ID, &expiredEnd)
	assert.NoError(t, err)

	// Ends today: days remaining is 0, which is EXPIRED.
	endsToday, err := svc.GetOrCreate("+911000000011", "")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(endsToday.ID, models.UserStatusActive)
	assert.NoError(t, err)
	_, err = svc.UpdateSubscription(endsToday.ID, &todayEnd)
	assert.NoError(t, err)

	healthy, err := svc.GetOrCreate("+911000000012", "")
	assert.NoError(t, err)
	_, err = svc.UpdateStatus(healthy.ID, models.UserStatusActive)
	assert.NoError(t, err)
	_, err = svc.UpdateSubscription(healthy.ID, &futureEnd)
	assert.NoError(t, err)

	count, err := svc.DowngradeExpired(now)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := svc.Get(expired.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.UserStatusFree, got.Status)

	got, err = svc.Get(healthy.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, got.Status)
}
