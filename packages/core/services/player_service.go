package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{
		db: db,
	}
}

func (s *PlayerService) GetPlayerByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player

	result := s.db.WithContext(ctx).First(&player, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, result.Error
	}

	return &player, nil
}

// GetPlayerByUserID resolves the player profile of an authenticated user.
func (s *PlayerService) GetPlayerByUserID(ctx context.Context, userID uint) (*models.Player, error) {
	var player models.Player

	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&player)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoPlayerProfile
		}
		return nil, result.Error
	}

	return &player, nil
}

// CreatePlayerInTransaction creates the player of a freshly registered user
// inside the caller's transaction. Career counters start at zero.
func (s *PlayerService) CreatePlayerInTransaction(tx *gorm.DB, userID uint, name string) (*models.Player, error) {
	player := &models.Player{
		UserID: userID,
		Name:   name,
	}

	if err := tx.Create(player).Error; err != nil {
		return nil, err
	}

	slog.Info("player created", "player_id", player.ID, "user_id", userID)
	return player, nil
}

var topPlayerColumns = map[string]string{
	"goals":          "goals",
	"assists":        "assists",
	"tackles":        "tackles",
	"wins":           "wins",
	"mvps":           "mvps",
	"average_rating": "average_rating",
}

// GetTopPlayers ranks players on one career stat. Players without any match
// are left out.
func (s *PlayerService) GetTopPlayers(ctx context.Context, stat string, limit int) ([]models.Player, error) {
	column, ok := topPlayerColumns[stat]
	if !ok {
		column = "average_rating"
	}

	var players []models.Player
	result := s.db.WithContext(ctx).
		Where("matches > 0").
		Order(column + " DESC").
		Order("id ASC").
		Limit(limit).
		Find(&players)

	if result.Error != nil {
		return nil, result.Error
	}

	return players, nil
}

func (s *PlayerService) GetAllPlayers(ctx context.Context, orderBy string, direction string, page int, pageSize int) (*models.PaginatedPlayersResponse, error) {
	var players []models.Player
	var total int64
	db := s.db.WithContext(ctx)

	allowedOrderBy := map[string]bool{
		"created_at":     true,
		"name":           true,
		"goals":          true,
		"assists":        true,
		"wins":           true,
		"matches":        true,
		"average_rating": true,
	}
	if !allowedOrderBy[orderBy] {
		orderBy = "created_at"
	}

	direction = strings.ToUpper(direction)
	if direction != "ASC" && direction != "DESC" {
		direction = "DESC"
	}

	if err := db.Model(&models.Player{}).Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize

	if err := db.Order(orderBy + " " + direction).
		Order("id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&players).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.PaginatedPlayersResponse{
		Data:       players,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetPlayerMatches lists the matches a player took part in or administers.
func (s *PlayerService) GetPlayerMatches(ctx context.Context, playerID uint, status *models.MatchStatus, page int, pageSize int) (*models.PaginatedMatchResponse, error) {
	db := s.db.WithContext(ctx)

	if _, err := s.GetPlayerByID(ctx, playerID); err != nil {
		return nil, err
	}

	participated := db.Model(&models.Participation{}).Select("match_id").Where("player_id = ?", playerID)
	baseQuery := db.Model(&models.Match{}).Where("id IN (?) OR admin_id = ?", participated, playerID)
	if status != nil {
		baseQuery = baseQuery.Where("status = ?", *status)
	}

	var total int64
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	var matches []models.Match
	offset := (page - 1) * pageSize
	if err := baseQuery.Order("match_date DESC").Order("id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&matches).Error; err != nil {
		return nil, err
	}

	summaries, err := buildMatchSummaries(db, matches)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.PaginatedMatchResponse{
		Data:       summaries,
		Total:      total,
		Page:       page,
		PerPage:    pageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdatePlayer edits profile fields. Only the owning user may do it.
func (s *PlayerService) UpdatePlayer(ctx context.Context, playerID, userID uint, req models.UpdatePlayerRequest) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.UserID != userID {
		return nil, ErrNotPlayerOwner
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			verr := NewValidationError()
			verr.Add("name", "The name field is required.")
			return nil, verr
		}
		updates["name"] = name
	}
	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname == "" {
			updates["nickname"] = nil
		} else {
			updates["nickname"] = nickname
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", player.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetPlayerByID(ctx, playerID)
}

// SetPlayerImage stores the new avatar URL and returns the previous one.
func (s *PlayerService) SetPlayerImage(ctx context.Context, playerID uint, imageURL string) (*string, error) {
	var previous *string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var player models.Player
		if err := tx.First(&player, playerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		previous = player.Image

		return tx.Model(&models.Player{}).Where("id = ?", playerID).Update("image", imageURL).Error
	})
	if err != nil {
		return nil, err
	}

	return previous, nil
}
