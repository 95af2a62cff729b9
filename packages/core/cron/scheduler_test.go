package cron

import (
	"context"
	"testing"
	"time"

	authModels "pelada-api/packages/auth/models"
	"pelada-api/packages/core/models"
	"pelada-api/packages/core/services"
	"pelada-api/packages/core/testdb"
)

func TestRunNowAdvancesRunningMatches(t *testing.T) {
	db := testdb.Open(t)
	matchService := services.NewMatchService(db)
	scheduler := NewScheduler(services.NewMatchClockService(db, matchService), db, true)
	ctx := context.Background()

	_, admin := testdb.CreatePlayer(t, db, "admin")
	limit := 5
	match, err := matchService.CreateMatch(ctx, admin.ID, models.CreateMatchRequest{
		MatchDate:    time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		MatchTime:    "19:00",
		Location:     "Campo do Bairro",
		PlayersCount: models.Format5v5,
		EndMode:      models.EndModeTime,
		TimeLimit:    &limit,
	})
	if err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	if _, err := matchService.StartMatch(ctx, match.ID, admin.ID); err != nil {
		t.Fatalf("failed to start match: %v", err)
	}

	scheduler.RunNow()
	scheduler.RunNow()

	reloaded, err := matchService.GetMatch(ctx, match.ID)
	if err != nil {
		t.Fatalf("failed to reload match: %v", err)
	}
	if reloaded.CurrentMinute != 2 {
		t.Fatalf("expected minute 2, got %d", reloaded.CurrentMinute)
	}
}

func TestTokenCleanupRemovesExpiredTokens(t *testing.T) {
	db := testdb.Open(t)
	user, _ := testdb.CreatePlayer(t, db, "sleepy")

	db.Create(&authModels.RefreshToken{UserID: user.ID, Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)})
	db.Create(&authModels.RefreshToken{UserID: user.ID, Token: "valid", ExpiresAt: time.Now().Add(time.Hour)})

	scheduler := NewScheduler(services.NewMatchClockService(db, services.NewMatchService(db)), db, false)
	scheduler.runTokenCleanup()

	var tokens []authModels.RefreshToken
	db.Find(&tokens)
	if len(tokens) != 1 || tokens[0].Token != "valid" {
		t.Fatalf("expected only the valid token to remain, got %+v", tokens)
	}
}

func TestStartAndStop(t *testing.T) {
	db := testdb.Open(t)
	scheduler := NewScheduler(services.NewMatchClockService(db, services.NewMatchService(db)), db, true)

	if err := scheduler.Start(); err != nil {
		t.Fatalf("failed to start scheduler: %v", err)
	}
	if entries := len(scheduler.cron.Entries()); entries != 2 {
		t.Fatalf("expected 2 scheduled jobs, got %d", entries)
	}
	scheduler.Stop()
}
