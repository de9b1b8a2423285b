package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/models"
)

// ErrInvalidStatus is returned for status values outside FREE/ACTIVE/BLOCKED.
var ErrInvalidStatus = errors.New("invalid user status")

// UserService defines the operations on subscriber accounts.
type UserService interface {
	GetOrCreate(phone, pushToken string) (models.User, error)
	Get(id string) (models.User, error)
	GetByPhone(phone string) (models.User, error)
	List(search string) ([]models.User, error)
	UpdateStatus(id string, status models.UserStatus) (models.User, error)
	UpdateSubscription(id string, end *time.Time) (models.User, error)
	ActivePushTokens() ([]string, error)
	DowngradeExpired(now time.Time) (int, error)
}

type userService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(db *gorm.DB, logger *zap.Logger) UserService {
	return &userService{db: db, logger: logger}
}

// GetOrCreate looks the account up by phone, creating it lazily with status
// FREE on first login. A non-empty push token replaces the stored one, so the
// most recently registered device receives notifications.
func (s *userService) GetOrCreate(phone, pushToken string) (models.User, error) {
	var user models.User
	err := s.db.First(&user, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:        ulid.Make().String(),
			Phone:     phone,
			Status:    models.UserStatusFree,
			PushToken: pushToken,
			CreatedAt: time.Now(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("Provisioned new user", zap.String("user_id", user.ID))
		return user, nil
	}
	if err != nil {
		return models.User{}, err
	}

	if pushToken != "" && pushToken != user.PushToken {
		user.PushToken = pushToken
		if err := s.db.Save(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("failed to update push token: %w", err)
		}
	}
	return user, nil
}

func (s *userService) Get(id string) (models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	return user, err
}

func (s *userService) GetByPhone(phone string) (models.User, error) {
	var user models.User
	err := s.db.First(&user, "phone = ?", phone).Error
	return user, err
}

// List returns all users, optionally filtered by a phone or name substring.
func (s *userService) List(search string) ([]models.User, error) {
	var users []models.User
	q := s.db.Order("created_at desc")
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("phone LIKE ? OR name LIKE ?", pattern, pattern)
	}
	err := q.Find(&users).Error
	return users, err
}

func (s *userService) UpdateStatus(id string, status models.UserStatus) (models.User, error) {
	switch status {
	case models.UserStatusFree, models.UserStatusActive, models.UserStatusBlocked:
	default:
		return models.User{}, ErrInvalidStatus
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, err
	}
	user.Status = status
	if err := s.db.Save(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to update status: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateSubscription(id string, end *time.Time) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, err
	}
	user.SubscriptionEndDate = end
	if err := s.db.Save(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to update subscription: %w", err)
	}
	return user, nil
}

// ActivePushTokens returns the device tokens of every ACTIVE subscriber that
// has one registered. Only status gates delivery; the subscription end date is
// advisory.
func (s *userService) ActivePushTokens() ([]string, error) {
	var tokens []string
	err := s.db.Model(&models.User{}).
		Where("status = ? AND push_token <> ''", models.UserStatusActive).
		Pluck("push_token", &tokens).Error
	return tokens, err
}

// DowngradeExpired flips ACTIVE users whose subscription has run out back to
// FREE. This is the administrative enforcement step the countdown evaluator
// deliberately does not perform.
func (s *userService) DowngradeExpired(now time.Time) (int, error) {
	var users []models.User
	err := s.db.Where("status = ? AND subscription_end_date IS NOT NULL", models.UserStatusActive).
		Find(&users).Error
	if err != nil {
		return 0, err
	}

	var expired []string
	for i := range users {
		if advisor.DaysRemaining(*users[i].SubscriptionEndDate, now) <= 0 {
			expired = append(expired, users[i].ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = s.db.Model(&models.User{}).Where("id IN ?", expired).
		Update("status", models.UserStatusFree).Error
	if err != nil {
		return 0, fmt.Errorf("failed to downgrade expired users: %w", err)
	}

	s.logger.Info("Downgraded expired subscriptions", zap.Int("count", len(expired)))
	return len(expired), nil
}
