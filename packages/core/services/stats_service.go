package services

import (
	"context"
	"time"

	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db: db,
	}
}

func (s *StatsService) GetStats(ctx context.Context) (*models.Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.Stats{
		MatchesByStatus: map[models.MatchStatus]int64{
			models.MatchStatusWaiting:    0,
			models.MatchStatusInProgress: 0,
			models.MatchStatusFinished:   0,
			models.MatchStatusCancelled:  0,
		},
	}

	if err := db.Model(&models.Player{}).Count(&stats.TotalPlayers).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Match{}).Count(&stats.TotalMatches).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status models.MatchStatus
		Total  int64
	}
	var byStatus []statusCount
	if err := db.Model(&models.Match{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.MatchesByStatus[row.Status] = row.Total
	}

	if err := db.Model(&models.Event{}).
		Where("event_type = ?", models.EventGoal).
		Count(&stats.TotalGoals).Error; err != nil {
		return nil, err
	}

	// Weekly windows over creation date
	now := time.Now()
	last7DaysStart := now.AddDate(0, 0, -7)
	previous7DaysStart := now.AddDate(0, 0, -14)

	if err := db.Model(&models.Match{}).
		Where("created_at >= ?", last7DaysStart).
		Count(&stats.MatchesLast7Days).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Match{}).
		Where("created_at >= ? AND created_at < ?", previous7DaysStart, last7DaysStart).
		Count(&stats.MatchesPrevious7Days).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
