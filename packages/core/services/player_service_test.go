package services

import (
	"context"
	"errors"
	"testing"

	"pelada-api/packages/core/models"
	"pelada-api/packages/core/testdb"
)

func strPtr(v string) *string { return &v }

func TestGetPlayerByUserID(t *testing.T) {
	db := testdb.Open(t)
	s := NewPlayerService(db)
	user, player := testdb.CreatePlayer(t, db, "joao")

	found, err := s.GetPlayerByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to resolve player: %v", err)
	}
	if found.ID != player.ID {
		t.Fatalf("expected player %d, got %d", player.ID, found.ID)
	}

	if _, err := s.GetPlayerByUserID(context.Background(), 9999); !errors.Is(err, ErrNoPlayerProfile) {
		t.Fatalf("expected ErrNoPlayerProfile, got %v", err)
	}
	if _, err := s.GetPlayerByID(context.Background(), 9999); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestUpdatePlayer(t *testing.T) {
	db := testdb.Open(t)
	s := NewPlayerService(db)
	ctx := context.Background()
	owner, player := testdb.CreatePlayer(t, db, "owner")
	intruder, _ := testdb.CreatePlayer(t, db, "intruder")

	req := models.UpdatePlayerRequest{Name: strPtr("Ronaldo"), Nickname: strPtr("Fenomeno")}
	if _, err := s.UpdatePlayer(ctx, player.ID, intruder.ID, req); !errors.Is(err, ErrNotPlayerOwner) {
		t.Fatalf("expected ErrNotPlayerOwner, got %v", err)
	}

	updated, err := s.UpdatePlayer(ctx, player.ID, owner.ID, req)
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.Name != "Ronaldo" || updated.Nickname == nil || *updated.Nickname != "Fenomeno" {
		t.Fatalf("unexpected player %+v", updated)
	}

	cleared, err := s.UpdatePlayer(ctx, player.ID, owner.ID, models.UpdatePlayerRequest{Nickname: strPtr("  ")})
	if err != nil {
		t.Fatalf("failed to clear nickname: %v", err)
	}
	if cleared.Nickname != nil {
		t.Fatalf("expected blank nickname to be cleared, got %q", *cleared.Nickname)
	}

	_, err = s.UpdatePlayer(ctx, player.ID, owner.ID, models.UpdatePlayerRequest{Name: strPtr("")})
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["name"]) == 0 {
		t.Fatalf("expected name validation error, got %v", err)
	}
}

func TestGetTopPlayers(t *testing.T) {
	db := testdb.Open(t)
	s := NewPlayerService(db)
	players := testdb.CreatePlayers(t, db, "p", 4)

	stats := []map[string]interface{}{
		{"goals": 3, "matches": 2, "average_rating": 7.5},
		{"goals": 9, "matches": 4, "average_rating": 6.0},
		{"goals": 9, "matches": 5, "average_rating": 8.1},
	}
	for i, values := range stats {
		db.Model(&models.Player{}).Where("id = ?", players[i].ID).Updates(values)
	}

	top, err := s.GetTopPlayers(context.Background(), "goals", 10)
	if err != nil {
		t.Fatalf("failed to rank players: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected players without matches to be skipped, got %d", len(top))
	}
	if top[0].ID != players[1].ID || top[1].ID != players[2].ID || top[2].ID != players[0].ID {
		t.Fatalf("unexpected goals ranking %d %d %d", top[0].ID, top[1].ID, top[2].ID)
	}

	byRating, _ := s.GetTopPlayers(context.Background(), "unknown", 1)
	if len(byRating) != 1 || byRating[0].ID != players[2].ID {
		t.Fatalf("expected unknown stat to rank by rating, got %+v", byRating)
	}
}

func TestGetAllPlayersPagination(t *testing.T) {
	db := testdb.Open(t)
	s := NewPlayerService(db)
	testdb.CreatePlayers(t, db, "p", 5)

	page, err := s.GetAllPlayers(context.Background(), "name", "asc", 2, 2)
	if err != nil {
		t.Fatalf("failed to list players: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Fatalf("expected 5 players over 3 pages, got %d over %d", page.Total, page.TotalPages)
	}
	if len(page.Data) != 2 || page.Data[0].Name != "p3" {
		t.Fatalf("unexpected second page %+v", page.Data)
	}
}

func TestGetPlayerMatches(t *testing.T) {
	db := testdb.Open(t)
	matches := NewMatchService(db)
	s := NewPlayerService(db)
	ctx := context.Background()
	_, admin := testdb.CreatePlayer(t, db, "admin")
	_, player := testdb.CreatePlayer(t, db, "player")

	joined := createMatch(t, matches, admin.ID, models.Format5v5, models.EndModeGoals)
	createMatch(t, matches, admin.ID, models.Format5v5, models.EndModeGoals)
	own := createMatch(t, matches, player.ID, models.Format3v3, models.EndModeGoals)
	joinAll(t, matches, joined.Code, []*models.Player{player})

	page, err := s.GetPlayerMatches(ctx, player.ID, nil, 1, 10)
	if err != nil {
		t.Fatalf("failed to list matches: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected joined and administered matches, got %d", page.Total)
	}

	ids := map[uint]bool{}
	for _, summary := range page.Data {
		ids[summary.ID] = true
	}
	if !ids[joined.ID] || !ids[own.ID] {
		t.Fatalf("unexpected matches %v", ids)
	}

	cancelled := models.MatchStatusCancelled
	filtered, _ := s.GetPlayerMatches(ctx, player.ID, &cancelled, 1, 10)
	if filtered.Total != 0 {
		t.Fatalf("expected no cancelled matches, got %d", filtered.Total)
	}
}

func TestSetPlayerImage(t *testing.T) {
	db := testdb.Open(t)
	s := NewPlayerService(db)
	_, player := testdb.CreatePlayer(t, db, "avatar")
	ctx := context.Background()

	previous, err := s.SetPlayerImage(ctx, player.ID, "https://cdn.pelada.test/a.png")
	if err != nil || previous != nil {
		t.Fatalf("expected no previous image, got %v (%v)", previous, err)
	}
	previous, err = s.SetPlayerImage(ctx, player.ID, "https://cdn.pelada.test/b.png")
	if err != nil || previous == nil || *previous != "https://cdn.pelada.test/a.png" {
		t.Fatalf("expected previous image to be returned, got %v (%v)", previous, err)
	}
}

func TestStatsAndRatingHistory(t *testing.T) {
	s, db := newMatchService(t)
	ctx := context.Background()
	_, admin := testdb.CreatePlayer(t, db, "admin")
	players := testdb.CreatePlayers(t, db, "p", 3)

	match := createMatch(t, s, admin.ID, models.Format3v3, models.EndModeGoals)
	joinAll(t, s, match.Code, append([]*models.Player{admin}, players...))
	s.ShuffleTeams(ctx, match.ID, admin.ID)
	s.StartMatch(ctx, match.ID, admin.ID)
	addGoal(t, s, match.ID, admin.ID, admin.ID)
	addGoal(t, s, match.ID, admin.ID, players[0].ID)
	if _, err := s.FinishMatch(ctx, match.ID, admin.ID); err != nil {
		t.Fatalf("failed to finish: %v", err)
	}
	createMatch(t, s, admin.ID, models.Format5v5, models.EndModeGoals)

	stats, err := NewStatsService(db).GetStats(ctx)
	if err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if stats.TotalPlayers != 4 || stats.TotalMatches != 2 || stats.TotalGoals != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.MatchesByStatus[models.MatchStatusFinished] != 1 || stats.MatchesByStatus[models.MatchStatusWaiting] != 1 {
		t.Fatalf("unexpected status breakdown %v", stats.MatchesByStatus)
	}
	if stats.MatchesLast7Days != 2 {
		t.Fatalf("expected 2 recent matches, got %d", stats.MatchesLast7Days)
	}

	history := NewRatingHistoryService(db)
	recent, err := history.GetRecentRatingChanges(ctx, 2)
	if err != nil || len(recent) != 2 {
		t.Fatalf("expected 2 recent entries, got %d (%v)", len(recent), err)
	}

	own, err := history.GetPlayerRatingHistory(ctx, admin.ID)
	if err != nil || len(own) != 1 {
		t.Fatalf("expected 1 entry for admin, got %d (%v)", len(own), err)
	}
	if own[0].Player.Name != "admin" || own[0].Result != models.ResultDraw {
		t.Fatalf("unexpected entry %+v", own[0])
	}
	if _, err := history.GetPlayerRatingHistory(ctx, 9999); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}
