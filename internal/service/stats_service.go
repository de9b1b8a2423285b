package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-advisor-go/internal/advisor"
	"stock-advisor-go/internal/models"
)

const performanceCacheKey = "stats:performance"

// DashboardStats are the admin dashboard headline counters.
type DashboardStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	FreeUsers    int64 `json:"freeUsers"`
	ActiveUsers  int64 `json:"activeUsers"`
	BlockedUsers int64 `json:"blockedUsers"`
	ActiveTrades int64 `json:"activeTrades"`
	ClosedTrades int64 `json:"closedTrades"`
}

// StatsService derives dashboard figures from the stored records. Both the
// admin and mobile surfaces read through it, so the two UIs can never disagree
// on totals.
type StatsService interface {
	Dashboard(ctx context.Context) (DashboardStats, error)
	Performance(ctx context.Context) (advisor.PerformanceReport, error)
}

type statsService struct {
	db     *gorm.DB
	rdb    *redis.Client // nil disables caching
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService creates a new stats service. rdb may be nil, in which case
// every call recomputes from the database.
func NewStatsService(db *gorm.DB, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) StatsService {
	return &statsService{db: db, rdb: rdb, ttl: ttl, logger: logger}
}

func (s *statsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats

	userCounts := []struct {
		status models.UserStatus
		target *int64
	}{
		{models.UserStatusFree, &stats.FreeUsers},
		{models.UserStatusActive, &stats.ActiveUsers},
		{models.UserStatusBlocked, &stats.BlockedUsers},
	}
	for _, c := range userCounts {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("status = ?", c.status).Count(c.target).Error; err != nil {
			return DashboardStats{}, err
		}
	}
	stats.TotalUsers = stats.FreeUsers + stats.ActiveUsers + stats.BlockedUsers

	if err := s.db.WithContext(ctx).Model(&models.Trade{}).
		Where("status = ?", models.TradeStatusActive).Count(&stats.ActiveTrades).Error; err != nil {
		return DashboardStats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Trade{}).
		Where("status = ?", models.TradeStatusClosed).Count(&stats.ClosedTrades).Error; err != nil {
		return DashboardStats{}, err
	}

	return stats, nil
}

// Performance aggregates every closed trade into the overall and per-segment
// win-rate report. Results are cached briefly in Redis when configured, to
// keep the dashboards cheap under polling.
func (s *statsService) Performance(ctx context.Context) (advisor.PerformanceReport, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, performanceCacheKey).Bytes()
		if err == nil {
			var report advisor.PerformanceReport
			if err := json.Unmarshal(cached, &report); err == nil {
				return report, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		}
	}

	var trades []models.Trade
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.TradeStatusClosed).Find(&trades).Error; err != nil {
		return advisor.PerformanceReport{}, err
	}

	report := advisor.BuildReport(trades)
	if report.Skipped > 0 {
		s.logger.Warn("Skipped malformed closed trades during aggregation",
			zap.Int("skipped", report.Skipped))
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := s.rdb.Set(ctx, performanceCacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("Stats cache write failed", zap.Error(err))
			}
		}
	}

	return report, nil
}
