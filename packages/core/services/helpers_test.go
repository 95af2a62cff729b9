package services

import (
	"context"
	"testing"
	"time"

	"pelada-api/packages/core/models"
	"pelada-api/packages/core/testdb"

	"gorm.io/gorm"
)

func newMatchService(t *testing.T) (*MatchService, *gorm.DB) {
	t.Helper()

	db := testdb.Open(t)
	service := NewMatchService(db)
	// Keep join order so team composition is predictable.
	service.shuffle = nil
	return service, db
}

func intPtr(v int) *int { return &v }

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02")
}

func createMatch(t *testing.T, s *MatchService, adminID uint, format models.PlayersCount, mode models.EndMode) *models.MatchDetail {
	t.Helper()

	req := models.CreateMatchRequest{
		MatchDate:    tomorrow(),
		MatchTime:    "18:30",
		Location:     "Quadra do Parque",
		PlayersCount: format,
		EndMode:      mode,
	}
	if mode.UsesGoals() {
		req.GoalLimit = intPtr(5)
	}
	if mode.UsesTime() {
		req.TimeLimit = intPtr(40)
	}

	match, err := s.CreateMatch(context.Background(), adminID, req)
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	return match
}

func joinAll(t *testing.T, s *MatchService, code string, players []*models.Player) {
	t.Helper()

	for _, player := range players {
		if _, err := s.JoinMatch(context.Background(), code, player.ID); err != nil {
			t.Fatalf("player %d failed to join: %v", player.ID, err)
		}
	}
}

func reloadPlayer(t *testing.T, db *gorm.DB, id uint) models.Player {
	t.Helper()

	var player models.Player
	if err := db.First(&player, id).Error; err != nil {
		t.Fatalf("failed to reload player %d: %v", id, err)
	}
	return player
}

func participation(t *testing.T, db *gorm.DB, matchID, playerID uint) models.Participation {
	t.Helper()

	var p models.Participation
	if err := db.Where("match_id = ? AND player_id = ?", matchID, playerID).First(&p).Error; err != nil {
		t.Fatalf("failed to load participation of player %d: %v", playerID, err)
	}
	return p
}

func teamByName(t *testing.T, db *gorm.DB, matchID uint, name models.TeamName) models.Team {
	t.Helper()

	var team models.Team
	if err := db.Where("match_id = ? AND team_name = ?", matchID, name).First(&team).Error; err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	return team
}

func addGoal(t *testing.T, s *MatchService, matchID, adminID, playerID uint) {
	t.Helper()
	addEvent(t, s, matchID, adminID, playerID, models.EventGoal)
}

func addEvent(t *testing.T, s *MatchService, matchID, adminID, playerID uint, eventType models.EventType) *models.EventView {
	t.Helper()

	event, err := s.AddEvent(context.Background(), matchID, adminID, models.AddEventRequest{
		PlayerID:  playerID,
		EventType: eventType,
	})
	if err != nil {
		t.Fatalf("failed to add %s for player %d: %v", eventType, playerID, err)
	}
	return event
}
