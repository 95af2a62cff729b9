package services

import (
	"context"
	"log/slog"

	"pelada-api/packages/core/models"
	"pelada-api/packages/core/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StartMatch moves a waiting match to in_progress. Existing team assignments
// are kept as they are.
func (s *MatchService) StartMatch(ctx context.Context, matchID, actorID uint) (*models.MatchDetail, error) {
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

		if _, _, err := ensureTeams(tx, match.ID); err != nil {
			return err
		}

		return tx.Model(&models.Match{}).Where("id = ?", match.ID).
			Updates(map[string]interface{}{
				"status":         models.MatchStatusInProgress,
				"started_at":     s.now(),
				"current_minute": 0,
				"is_paused":      false,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match started", "match_id", matchID, "admin_id", actorID)
	return s.GetMatch(ctx, matchID)
}

func (s *MatchService) TogglePause(ctx context.Context, matchID, actorID uint) (*models.MatchDetail, error) {
	var paused bool

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

		paused = !match.IsPaused
		return tx.Model(&models.Match{}).Where("id = ?", match.ID).Update("is_paused", paused).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("match pause toggled", "match_id", matchID, "is_paused", paused)
	return s.GetMatch(ctx, matchID)
}

// FinishMatch closes the match, decides the winner and propagates career stats.
func (s *MatchService) FinishMatch(ctx context.Context, matchID, actorID uint) (*models.MatchDetail, error) {
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

		return s.finishInTransaction(tx, match)
	})
	if err != nil {
		return nil, err
	}

	return s.GetMatch(ctx, matchID)
}

// TickMatch advances the clock of a running match by one minute and finishes
// it when a configured limit is reached. Paused or stopped matches are left
// untouched.
func (s *MatchService) TickMatch(ctx context.Context, matchID uint) (bool, error) {
	finished := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusInProgress || match.IsPaused {
			return nil
		}

		match.CurrentMinute++
		if err := tx.Model(&models.Match{}).Where("id = ?", match.ID).
			Update("current_minute", match.CurrentMinute).Error; err != nil {
			return err
		}

		teams, err := loadTeams(tx, match.ID)
		if err != nil {
			return err
		}
		scores := make([]int, 0, len(teams))
		for _, team := range teams {
			scores = append(scores, team.Score)
		}

		if !match.TimeLimitReached() && !match.GoalLimitReached(scores...) {
			return nil
		}

		finished = true
		return s.finishInTransaction(tx, match)
	})

	return finished, err
}

func (s *MatchService) finishInTransaction(tx *gorm.DB, match *models.Match) error {
	teamA, teamB, err := ensureTeams(tx, match.ID)
	if err != nil {
		return err
	}

	var winner *models.Team
	switch {
	case teamA.Score > teamB.Score:
		winner = teamA
	case teamB.Score > teamA.Score:
		winner = teamB
	}

	updates := map[string]interface{}{
		"status":          models.MatchStatusFinished,
		"finished_at":     s.now(),
		"is_paused":       false,
		"winning_team_id": nil,
	}
	if winner != nil {
		updates["winning_team_id"] = winner.ID
	}
	if err := tx.Model(&models.Match{}).Where("id = ?", match.ID).Updates(updates).Error; err != nil {
		return err
	}

	propagated, err := propagateCareerStats(tx, match.ID, teamA, teamB, winner)
	if err != nil {
		return err
	}

	attrs := []any{"match_id", match.ID, "score_a", teamA.Score, "score_b", teamB.Score, "propagated", propagated}
	if winner != nil {
		attrs = append(attrs, "winner", winner.TeamName)
	} else {
		attrs = append(attrs, "winner", "draw")
	}
	slog.Info("match finished", attrs...)
	return nil
}

type contribution struct {
	participation models.Participation
	player        models.Player
	result        models.MatchResult
	rating        float64
	average       float64
}

// propagateCareerStats folds the per-match counters of every team member into
// their career stats. Defenses stay match-local.
func propagateCareerStats(tx *gorm.DB, matchID uint, teamA, teamB, winner *models.Team) (int, error) {
	var participations []models.Participation
	if err := tx.Where("match_id = ? AND team_id IN ?", matchID, []uint{teamA.ID, teamB.ID}).
		Order("id ASC").
		Find(&participations).Error; err != nil {
		return 0, err
	}
	if len(participations) == 0 {
		return 0, nil
	}

	playerIDs := make([]uint, 0, len(participations))
	for _, p := range participations {
		playerIDs = append(playerIDs, p.PlayerID)
	}

	var players []models.Player
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", playerIDs).
		Order("id ASC").
		Find(&players).Error; err != nil {
		return 0, err
	}
	byID := make(map[uint]models.Player, len(players))
	for _, player := range players {
		byID[player.ID] = player
	}

	contributions := make([]contribution, 0, len(participations))
	for _, p := range participations {
		player, ok := byID[p.PlayerID]
		if !ok {
			slog.Warn("participant without player row", "match_id", matchID, "player_id", p.PlayerID)
			continue
		}

		result := models.ResultDraw
		if winner != nil {
			result = models.ResultLoss
			if *p.TeamID == winner.ID {
				result = models.ResultWin
			}
		}

		rating := utils.CalculateMatchRating(p.GoalsScored, p.AssistsMade, p.TacklesMade, p.DefensesMade)
		contributions = append(contributions, contribution{
			participation: p,
			player:        player,
			result:        result,
			rating:        rating,
			average:       utils.UpdateAverageRating(player.AverageRating, player.Matches, rating),
		})
	}

	mvp := pickMVP(contributions)

	for i, c := range contributions {
		p := c.participation
		updates := map[string]interface{}{
			"goals":          gorm.Expr("goals + ?", p.GoalsScored),
			"assists":        gorm.Expr("assists + ?", p.AssistsMade),
			"tackles":        gorm.Expr("tackles + ?", p.TacklesMade),
			"matches":        gorm.Expr("matches + ?", 1),
			"average_rating": c.average,
		}
		if c.result == models.ResultWin {
			updates["wins"] = gorm.Expr("wins + ?", 1)
		}
		if i == mvp {
			updates["mvps"] = gorm.Expr("mvps + ?", 1)
		}

		if err := tx.Model(&models.Player{}).Where("id = ?", c.player.ID).Updates(updates).Error; err != nil {
			return 0, err
		}

		history := models.RatingHistory{
			PlayerID:      c.player.ID,
			MatchID:       &matchID,
			TeamID:        p.TeamID,
			Result:        c.result,
			MatchRating:   c.rating,
			AverageBefore: c.player.AverageRating,
			AverageAfter:  c.average,
			GoalsScored:   p.GoalsScored,
			AssistsMade:   p.AssistsMade,
			TacklesMade:   p.TacklesMade,
			DefensesMade:  p.DefensesMade,
			IsMvp:         i == mvp,
		}
		if err := tx.Create(&history).Error; err != nil {
			return 0, err
		}
	}

	return len(contributions), nil
}

// pickMVP returns the index of the best rated contribution, or -1. Ties go to
// more goals, then more assists, then the lower player id.
func pickMVP(contributions []contribution) int {
	best := -1
	for i, c := range contributions {
		if best == -1 {
			best = i
			continue
		}
		b := contributions[best]
		switch {
		case c.rating != b.rating:
			if c.rating > b.rating {
				best = i
			}
		case c.participation.GoalsScored != b.participation.GoalsScored:
			if c.participation.GoalsScored > b.participation.GoalsScored {
				best = i
			}
		case c.participation.AssistsMade != b.participation.AssistsMade:
			if c.participation.AssistsMade > b.participation.AssistsMade {
				best = i
			}
		case c.player.ID < b.player.ID:
			best = i
		}
	}
	return best
}
