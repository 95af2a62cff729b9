package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"pelada-api/packages/core/models"
	"pelada-api/packages/core/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxCodeAttempts = 20

type MatchService struct {
	db      *gorm.DB
	now     func() time.Time
	shuffle utils.ShuffleFunc
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{
		db:      db,
		now:     time.Now,
		shuffle: rand.Shuffle,
	}
}

type MatchFilters struct {
	Status  *models.MatchStatus
	Page    int
	PerPage int
}

func (s *MatchService) CreateMatch(ctx context.Context, adminID uint, req models.CreateMatchRequest) (*models.MatchDetail, error) {
	verr := NewValidationError()
	date, _ := s.parseMatchDate(req.MatchDate, verr)
	matchTime, _ := parseMatchTime(req.MatchTime, verr)
	if req.Location == "" {
		verr.Add("location", "The location field is required.")
	}
	if req.PlayersCount.RosterCapacity() == 0 {
		verr.Add("players_count", "The selected players count is invalid.")
	}
	validateEndMode(req.EndMode, req.GoalLimit, req.TimeLimit, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	match := models.Match{
		AdminID:      adminID,
		MatchDate:    date,
		MatchTime:    matchTime,
		Location:     req.Location,
		PlayersCount: req.PlayersCount,
		EndMode:      req.EndMode,
		GoalLimit:    req.GoalLimit,
		TimeLimit:    req.TimeLimit,
		Status:       models.MatchStatusWaiting,
	}

	if err := s.insertWithUniqueCode(ctx, &match); err != nil {
		return nil, err
	}

	slog.Info("match created", "match_id", match.ID, "code", match.Code, "admin_id", adminID)
	return s.GetMatch(ctx, match.ID)
}

// insertWithUniqueCode retries the whole insert when the unique index on
// code rejects a concurrently generated duplicate.
func (s *MatchService) insertWithUniqueCode(ctx context.Context, match *models.Match) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			code, err := generateUniqueCode(tx)
			if err != nil {
				return err
			}
			match.Code = code
			return tx.Create(match).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			match.ID = 0
			slog.Warn("join code collision, retrying", "code", match.Code, "attempt", attempt+1)
			continue
		}
		return err
	}
	return ErrCodeExhausted
}

func generateUniqueCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := utils.GenerateCode()

		var count int64
		if err := tx.Model(&models.Match{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func (s *MatchService) GetMatches(ctx context.Context, filters MatchFilters) (*models.PaginatedMatchResponse, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Match{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var matches []models.Match
	offset := (filters.Page - 1) * filters.PerPage
	if err := query.Order("match_date DESC").Order("match_time DESC").Order("id DESC").
		Offset(offset).
		Limit(filters.PerPage).
		Find(&matches).Error; err != nil {
		return nil, err
	}

	summaries, err := buildMatchSummaries(db, matches)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filters.PerPage) - 1) / int64(filters.PerPage))

	return &models.PaginatedMatchResponse{
		Data:       summaries,
		Total:      total,
		Page:       filters.Page,
		PerPage:    filters.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uint) (*models.MatchDetail, error) {
	db := s.db.WithContext(ctx)

	var match models.Match
	if err := db.First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	return buildMatchDetail(db, &match)
}

func (s *MatchService) GetMatchByCode(ctx context.Context, code string) (*models.MatchDetail, error) {
	db := s.db.WithContext(ctx)

	var match models.Match
	if err := db.Where("code = ?", normalizeCode(code)).First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	return buildMatchDetail(db, &match)
}

// UpdateMatch changes the configuration of a match that has not started yet.
func (s *MatchService) UpdateMatch(ctx context.Context, matchID, actorID uint, req models.UpdateMatchRequest) (*models.MatchDetail, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsAdmin(actorID) {
			return ErrNotMatchAdmin
		}
		if match.Status != models.MatchStatusWaiting {
			return ErrMatchNotWaiting
		}

		verr := NewValidationError()
		updates := map[string]interface{}{}

		if req.MatchDate != nil {
			if date, ok := s.parseMatchDate(*req.MatchDate, verr); ok {
				updates["match_date"] = date
			}
		}
		if req.MatchTime != nil {
			if matchTime, ok := parseMatchTime(*req.MatchTime, verr); ok {
				updates["match_time"] = matchTime
			}
		}
		if req.Location != nil {
			updates["location"] = *req.Location
		}

		merged := *match
		if req.PlayersCount != nil {
			merged.PlayersCount = *req.PlayersCount
			updates["players_count"] = *req.PlayersCount
		}
		if req.EndMode != nil {
			merged.EndMode = *req.EndMode
			updates["end_mode"] = *req.EndMode
		}
		if req.GoalLimit != nil {
			merged.GoalLimit = req.GoalLimit
			updates["goal_limit"] = *req.GoalLimit
		}
		if req.TimeLimit != nil {
			merged.TimeLimit = req.TimeLimit
			updates["time_limit"] = *req.TimeLimit
		}
		validateEndMode(merged.EndMode, merged.GoalLimit, merged.TimeLimit, verr)

		if req.PlayersCount != nil {
			count, err := countParticipants(tx, match.ID)
			if err != nil {
				return err
			}
			if merged.RosterCapacity() == 0 {
				verr.Add("players_count", "The selected players count is invalid.")
			} else if count > int64(merged.RosterCapacity()) {
				verr.Add("players_count", fmt.Sprintf("The match already has %d participants.", count))
			}
		}

		if err := verr.Err(); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		return tx.Model(&models.Match{}).Where("id = ?", match.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match updated", "match_id", matchID, "admin_id", actorID)
	return s.GetMatch(ctx, matchID)
}

// CancelMatch moves a non terminal match to cancelled. Career stats are not touched.
func (s *MatchService) CancelMatch(ctx context.Context, matchID, actorID uint) (*models.MatchDetail, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsAdmin(actorID) {
			return ErrNotMatchAdmin
		}
		if match.Status.IsTerminal() {
			return ErrMatchClosed
		}

		return tx.Model(&models.Match{}).Where("id = ?", match.ID).
			Updates(map[string]interface{}{
				"status":    models.MatchStatusCancelled,
				"is_paused": false,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match cancelled", "match_id", matchID, "admin_id", actorID)
	return s.GetMatch(ctx, matchID)
}

// DeleteMatch removes the match and everything hanging off it except the
// rating history, which is detached. Career counters are left untouched.
func (s *MatchService) DeleteMatch(ctx context.Context, matchID, actorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsAdmin(actorID) {
			return ErrNotMatchAdmin
		}

		if err := tx.Where("match_id = ?", match.ID).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.RatingHistory{}).
			Where("match_id = ?", match.ID).
			Updates(map[string]interface{}{"match_id": nil, "team_id": nil}).Error; err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", match.ID).Delete(&models.Participation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Match{}).Where("id = ?", match.ID).Update("winning_team_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", match.ID).Delete(&models.Team{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Match{}, match.ID).Error
	})
	if err != nil {
		return err
	}

	slog.Info("match deleted", "match_id", matchID, "admin_id", actorID)
	return nil
}

// lockMatch loads a match holding its row lock for the rest of the transaction.
func lockMatch(tx *gorm.DB, matchID uint) (*models.Match, error) {
	var match models.Match
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func countParticipants(tx *gorm.DB, matchID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Participation{}).Where("match_id = ?", matchID).Count(&count).Error
	return count, err
}

func (s *MatchService) parseMatchDate(raw string, verr *ValidationError) (datatypes.Date, bool) {
	now := s.now()
	date, err := time.ParseInLocation("2006-01-02", raw, now.Location())
	if err != nil {
		verr.Add("match_date", "The match date must be a valid date (YYYY-MM-DD).")
		return datatypes.Date{}, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		verr.Add("match_date", "The match date must be today or a later date.")
		return datatypes.Date{}, false
	}
	return datatypes.Date(date), true
}

func parseMatchTime(raw string, verr *ValidationError) (datatypes.Time, bool) {
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		verr.Add("match_time", "The match time must match the format HH:MM.")
		return 0, false
	}
	return datatypes.NewTime(parsed.Hour(), parsed.Minute(), 0, 0), true
}

func validateEndMode(mode models.EndMode, goalLimit, timeLimit *int, verr *ValidationError) {
	switch mode {
	case models.EndModeGoals, models.EndModeTime, models.EndModeBoth:
	default:
		verr.Add("end_mode", "The selected end mode is invalid.")
		return
	}

	if mode.UsesGoals() {
		if goalLimit == nil {
			verr.Add("goal_limit", "The goal limit field is required when end mode is goals or both.")
		} else if *goalLimit < 1 || *goalLimit > 50 {
			verr.Add("goal_limit", "The goal limit must be between 1 and 50.")
		}
	}
	if mode.UsesTime() {
		if timeLimit == nil {
			verr.Add("time_limit", "The time limit field is required when end mode is time or both.")
		} else if *timeLimit < 1 || *timeLimit > 300 {
			verr.Add("time_limit", "The time limit must be between 1 and 300.")
		}
	}
}
