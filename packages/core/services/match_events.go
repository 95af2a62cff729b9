package services

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

// AddEvent records an event for a participant of a running match. Counters
// and the team score only move when the participant belongs to a team.
func (s *MatchService) AddEvent(ctx context.Context, matchID, actorID uint, req models.AddEventRequest) (*models.EventView, error) {
	verr := NewValidationError()
	if !req.EventType.IsValid() {
		verr.Add("event_type", "The selected event type is invalid.")
	}
	if req.Minute != nil && *req.Minute < 0 {
		verr.Add("minute", "The minute must be at least 0.")
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > 255 {
		verr.Add("description", "The description may not be greater than 255 characters.")
	}

	var event models.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !match.IsAdmin(actorID) {
			return ErrNotMatchAdmin
		}
		if match.Status != models.MatchStatusInProgress {
			return ErrMatchNotInProgress
		}
		if err := verr.Err(); err != nil {
			return err
		}

		var participation models.Participation
		if err := tx.Where("match_id = ? AND player_id = ?", match.ID, req.PlayerID).First(&participation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAParticipant
			}
			return err
		}

		minute := match.CurrentMinute
		if req.Minute != nil {
			minute = *req.Minute
		}

		event = models.Event{
			MatchID:     match.ID,
			PlayerID:    req.PlayerID,
			TeamID:      participation.TeamID,
			EventType:   req.EventType,
			Minute:      minute,
			Description: req.Description,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		if !participation.HasTeam() {
			slog.Warn("event recorded for a player without team", "match_id", match.ID, "player_id", req.PlayerID, "event_type", req.EventType)
			return nil
		}

		column := req.EventType.CounterColumn()
		if err := tx.Model(&models.Participation{}).Where("id = ?", participation.ID).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
			return err
		}

		if req.EventType == models.EventGoal {
			if err := tx.Model(&models.Team{}).Where("id = ?", *participation.TeamID).
				UpdateColumn("score", gorm.Expr("score + ?", 1)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match event recorded", "match_id", matchID, "player_id", req.PlayerID, "event_type", req.EventType, "minute", event.Minute)

	db := s.db.WithContext(ctx)
	teams, err := loadTeams(db, matchID)
	if err != nil {
		return nil, err
	}
	players, err := loadPlayerSummaries(db, []uint{event.PlayerID})
	if err != nil {
		return nil, err
	}
	view := eventView(event, players, teamNamesByID(teams))
	return &view, nil
}

func (s *MatchService) GetMatchEvents(ctx context.Context, matchID uint, eventType *models.EventType) ([]models.EventView, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Match{}).Where("id = ?", matchID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrMatchNotFound
	}

	teams, err := loadTeams(db, matchID)
	if err != nil {
		return nil, err
	}
	return loadEventViews(db, matchID, eventType, teams)
}
