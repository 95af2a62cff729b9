package services

import (
	"context"
	"errors"
	"log/slog"

	"pelada-api/packages/core/models"
	"pelada-api/packages/core/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JoinMatch adds the player to the match identified by its join code. When
// the player is not eligible every failing condition is returned joined.
func (s *MatchService) JoinMatch(ctx context.Context, code string, playerID uint) (*models.MatchDetail, error) {
	var matchID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", normalizeCode(code)).
			First(&match).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		blockers, err := joinBlockers(tx, &match, playerID)
		if err != nil {
			return err
		}
		if len(blockers) > 0 {
			return errors.Join(blockers...)
		}

		participation := models.Participation{
			MatchID:  match.ID,
			PlayerID: playerID,
			JoinedAt: s.now(),
		}
		if err := tx.Create(&participation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return err
		}

		matchID = match.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("player joined match", "match_id", matchID, "player_id", playerID)
	return s.GetMatch(ctx, matchID)
}

// CanJoin reports whether the player may join the match right now.
func (s *MatchService) CanJoin(ctx context.Context, matchID, playerID uint) (bool, error) {
	db := s.db.WithContext(ctx)

	var match models.Match
	if err := db.First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrMatchNotFound
		}
		return false, err
	}

	blockers, err := joinBlockers(db, &match, playerID)
	if err != nil {
		return false, err
	}
	return len(blockers) == 0, nil
}

// joinBlockers lists every condition preventing the player from joining.
func joinBlockers(tx *gorm.DB, match *models.Match, playerID uint) ([]error, error) {
	var reasons []error

	count, err := countParticipants(tx, match.ID)
	if err != nil {
		return nil, err
	}
	if match.IsFull(count) {
		reasons = append(reasons, ErrMatchFull)
	}

	if match.Status != models.MatchStatusWaiting {
		reasons = append(reasons, ErrMatchNotWaiting)
	}

	joined, err := isParticipant(tx, match.ID, playerID)
	if err != nil {
		return nil, err
	}
	if joined {
		reasons = append(reasons, ErrAlreadyJoined)
	}

	return reasons, nil
}

func isParticipant(tx *gorm.DB, matchID, playerID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Participation{}).
		Where("match_id = ? AND player_id = ?", matchID, playerID).
		Count(&count).Error
	return count > 0, err
}

// LeaveMatch removes the player's participation. Team slots left behind by a
// shuffle are not rebalanced.
func (s *MatchService) LeaveMatch(ctx context.Context, matchID, playerID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := lockMatch(tx, matchID)
		if err != nil {
			return err
		}

		var participation models.Participation
		if err := tx.Where("match_id = ? AND player_id = ?", match.ID, playerID).First(&participation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAParticipant
			}
			return err
		}

		if match.IsAdmin(playerID) {
			return ErrAdminCannotLeave
		}
		if match.Status == models.MatchStatusInProgress || match.Status == models.MatchStatusFinished {
			return ErrMatchStarted
		}

		return tx.Delete(&participation).Error
	})
	if err != nil {
		return err
	}

	slog.Info("player left match", "match_id", matchID, "player_id", playerID)
	return nil
}

// ShuffleTeams randomly splits the current participants into the two teams
// and resets their per-match counters.
func (s *MatchService) ShuffleTeams(ctx context.Context, matchID, actorID uint) (*models.ShuffleResult, error) {
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

		teamA, teamB, err := ensureTeams(tx, match.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Participation{}).
			Where("match_id = ?", match.ID).
			Updates(map[string]interface{}{
				"team_id":       nil,
				"goals_scored":  0,
				"assists_made":  0,
				"tackles_made":  0,
				"defenses_made": 0,
			}).Error; err != nil {
			return err
		}

		var playerIDs []uint
		if err := tx.Model(&models.Participation{}).
			Where("match_id = ?", match.ID).
			Order("id ASC").
			Pluck("player_id", &playerIDs).Error; err != nil {
			return err
		}

		sideA, sideB := utils.SplitTeams(playerIDs, s.shuffle)
		if err := assignTeam(tx, match.ID, teamA.ID, sideA); err != nil {
			return err
		}
		return assignTeam(tx, match.ID, teamB.ID, sideB)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("teams shuffled", "match_id", matchID, "admin_id", actorID)
	return buildShuffleResult(s.db.WithContext(ctx), matchID)
}

func assignTeam(tx *gorm.DB, matchID, teamID uint, playerIDs []uint) error {
	if len(playerIDs) == 0 {
		return nil
	}
	return tx.Model(&models.Participation{}).
		Where("match_id = ? AND player_id IN ?", matchID, playerIDs).
		Update("team_id", teamID).Error
}

// ensureTeams returns team A and team B, creating whichever is missing.
func ensureTeams(tx *gorm.DB, matchID uint) (*models.Team, *models.Team, error) {
	teams, err := loadTeams(tx, matchID)
	if err != nil {
		return nil, nil, err
	}

	byName := make(map[models.TeamName]*models.Team, 2)
	for i := range teams {
		byName[teams[i].TeamName] = &teams[i]
	}

	for _, name := range []models.TeamName{models.TeamA, models.TeamB} {
		if _, ok := byName[name]; ok {
			continue
		}
		team := models.Team{
			MatchID:   matchID,
			TeamName:  name,
			TeamColor: name.Color(),
		}
		if err := tx.Create(&team).Error; err != nil {
			return nil, nil, err
		}
		byName[name] = &team
	}

	return byName[models.TeamA], byName[models.TeamB], nil
}
