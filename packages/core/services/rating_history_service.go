package services

import (
	"context"

	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

type RatingHistoryService struct {
	db *gorm.DB
}

func NewRatingHistoryService(db *gorm.DB) *RatingHistoryService {
	return &RatingHistoryService{
		db: db,
	}
}

func (s *RatingHistoryService) GetRecentRatingChanges(ctx context.Context, limit int) ([]models.RatingHistoryEntry, error) {
	db := s.db.WithContext(ctx)

	var history []models.RatingHistory
	if err := db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&history).Error; err != nil {
		return nil, err
	}

	return withPlayers(db, history)
}

func (s *RatingHistoryService) GetPlayerRatingHistory(ctx context.Context, playerID uint) ([]models.RatingHistoryEntry, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Player{}).Where("id = ?", playerID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPlayerNotFound
	}

	var history []models.RatingHistory
	if err := db.Where("player_id = ?", playerID).Order("id ASC").Find(&history).Error; err != nil {
		return nil, err
	}

	return withPlayers(db, history)
}

func withPlayers(db *gorm.DB, history []models.RatingHistory) ([]models.RatingHistoryEntry, error) {
	ids := make([]uint, 0, len(history))
	for _, h := range history {
		ids = append(ids, h.PlayerID)
	}
	players, err := loadPlayerSummaries(db, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RatingHistoryEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, models.RatingHistoryEntry{
			RatingHistory: h,
			Player:        summaryFor(players, h.PlayerID),
		})
	}
	return entries, nil
}
