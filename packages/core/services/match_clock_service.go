package services

import (
	"context"
	"log/slog"

	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

// MatchClockService drives current_minute for running matches and closes
// the ones that reached their end condition.
type MatchClockService struct {
	db           *gorm.DB
	matchService *MatchService
}

func NewMatchClockService(db *gorm.DB, matchService *MatchService) *MatchClockService {
	return &MatchClockService{
		db:           db,
		matchService: matchService,
	}
}

// AdvanceRunningMatches ticks every unpaused in_progress match once. A failure
// on one match does not stop the others.
func (s *MatchClockService) AdvanceRunningMatches(ctx context.Context) (advanced int, finished int, err error) {
	var matchIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("status = ? AND is_paused = ?", models.MatchStatusInProgress, false).
		Order("id ASC").
		Pluck("id", &matchIDs).Error; err != nil {
		slog.Error("failed to list running matches", "error", err)
		return 0, 0, err
	}

	for _, matchID := range matchIDs {
		if ctx.Err() != nil {
			return advanced, finished, ctx.Err()
		}

		done, err := s.matchService.TickMatch(ctx, matchID)
		if err != nil {
			slog.Error("failed to advance match clock", "match_id", matchID, "error", err)
			continue
		}

		advanced++
		if done {
			finished++
			slog.Info("match finished by clock", "match_id", matchID)
		}
	}

	return advanced, finished, nil
}

func (s *MatchClockService) GetRunningMatchesCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("status = ? AND is_paused = ?", models.MatchStatusInProgress, false).
		Count(&count).Error
	return count, err
}
