package fixtures

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authModels "pelada-api/packages/auth/models"
	authUtils "pelada-api/packages/auth/utils"
	"pelada-api/packages/core/models"
	"pelada-api/packages/core/services"

	"gorm.io/gorm"
)

const DefaultPassword = "password123"

type Fixtures struct {
	db       *gorm.DB
	players  *services.PlayerService
	matches  *services.MatchService
	password string
}

func NewFixtures(db *gorm.DB) *Fixtures {
	return &Fixtures{
		db:       db,
		players:  services.NewPlayerService(db),
		matches:  services.NewMatchService(db),
		password: DefaultPassword,
	}
}

// Summary counts what GenerateTestData created.
type Summary struct {
	Users   int
	Matches map[models.MatchStatus]int
}

type scriptedEvent struct {
	team      models.TeamName
	slot      int
	eventType models.EventType
}

// matchScript describes one seeded match. Roster holds indexes into the
// fixture players; the first one is the admin.
type matchScript struct {
	location     string
	playersCount models.PlayersCount
	endMode      models.EndMode
	goalLimit    *int
	timeLimit    *int
	roster       []int
	daysAgo      int
	shuffle      bool
	start        bool
	events       []scriptedEvent
	finish       bool
	cancel       bool
}

func intPtr(v int) *int { return &v }

var playerNames = []string{
	"Ronaldinho", "Kaka", "Rivaldo", "Cafu", "Romario",
	"Bebeto", "Zico", "Socrates", "Falcao", "Careca",
	"Dunga", "Taffarel", "Juninho", "Marta",
}

var scripts = []matchScript{
	{
		location:     "Arena Society Pinheiros",
		playersCount: models.Format5v5,
		endMode:      models.EndModeBoth,
		goalLimit:    intPtr(10),
		timeLimit:    intPtr(60),
		roster:       []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		daysAgo:      6,
		shuffle:      true,
		start:        true,
		events: []scriptedEvent{
			{models.TeamA, 0, models.EventGoal},
			{models.TeamA, 1, models.EventAssist},
			{models.TeamB, 2, models.EventTackle},
			{models.TeamA, 0, models.EventGoal},
			{models.TeamB, 0, models.EventGoal},
			{models.TeamB, 3, models.EventDefense},
			{models.TeamA, 2, models.EventGoal},
			{models.TeamA, 3, models.EventTackle},
		},
		finish: true,
	},
	{
		location:     "Quadra do Clube Atletico",
		playersCount: models.Format3v3,
		endMode:      models.EndModeGoals,
		goalLimit:    intPtr(5),
		roster:       []int{4, 5, 6, 7, 8, 9},
		daysAgo:      3,
		shuffle:      true,
		start:        true,
		events: []scriptedEvent{
			{models.TeamA, 0, models.EventGoal},
			{models.TeamB, 1, models.EventDefense},
			{models.TeamB, 1, models.EventGoal},
			{models.TeamA, 2, models.EventAssist},
		},
		finish: true,
	},
	{
		location:     "Campo do Parque Ibirapuera",
		playersCount: models.Format6v6,
		endMode:      models.EndModeTime,
		timeLimit:    intPtr(90),
		roster:       []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		shuffle:      true,
		start:        true,
		events: []scriptedEvent{
			{models.TeamB, 4, models.EventGoal},
			{models.TeamA, 1, models.EventTackle},
		},
	},
	{
		location:     "Society Vila Madalena",
		playersCount: models.Format5v5,
		endMode:      models.EndModeGoals,
		goalLimit:    intPtr(7),
		roster:       []int{10, 11, 12, 13, 0},
	},
	{
		location:     "Quadra Coberta Mooca",
		playersCount: models.Format3v3,
		endMode:      models.EndModeTime,
		timeLimit:    intPtr(40),
		roster:       []int{11, 12, 1},
		cancel:       true,
	},
}

// GenerateTestData seeds users with their player profiles and one match in
// every lifecycle state. Matches are driven through MatchService so career
// stats and rating history are consistent.
func (f *Fixtures) GenerateTestData(ctx context.Context) (*Summary, error) {
	slog.Info("starting fixtures generation")

	players, err := f.generatePlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate players: %w", err)
	}

	summary := &Summary{Users: len(players), Matches: map[models.MatchStatus]int{}}
	for i, script := range scripts {
		status, err := f.playScript(ctx, script, players)
		if err != nil {
			return nil, fmt.Errorf("failed to generate match %d (%s): %w", i+1, script.location, err)
		}
		summary.Matches[status]++
	}

	slog.Info("fixtures generated", "users", summary.Users, "matches", len(scripts))
	return summary, nil
}

func (f *Fixtures) generatePlayers(ctx context.Context) ([]*models.Player, error) {
	hashedPassword, err := authUtils.HashPassword(f.password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	players := make([]*models.Player, 0, len(playerNames))

	for _, name := range playerNames {
		err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			user := authModels.User{
				Email:           fmt.Sprintf("%s@pelada.dev", strings.ToLower(name)),
				Name:            name,
				Password:        hashedPassword,
				EmailVerifiedAt: &now,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			player, err := f.players.CreatePlayerInTransaction(tx, user.ID, name)
			if err != nil {
				return err
			}
			players = append(players, player)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
	}

	return players, nil
}

func (f *Fixtures) playScript(ctx context.Context, script matchScript, players []*models.Player) (models.MatchStatus, error) {
	admin := players[script.roster[0]].ID

	detail, err := f.matches.CreateMatch(ctx, admin, models.CreateMatchRequest{
		MatchDate:    time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		MatchTime:    "20:00",
		Location:     script.location,
		PlayersCount: script.playersCount,
		EndMode:      script.endMode,
		GoalLimit:    script.goalLimit,
		TimeLimit:    script.timeLimit,
	})
	if err != nil {
		return "", err
	}
	matchID := detail.ID

	for _, index := range script.roster {
		if _, err := f.matches.JoinMatch(ctx, detail.Code, players[index].ID); err != nil {
			return "", fmt.Errorf("join %s: %w", players[index].Name, err)
		}
	}

	if script.cancel {
		if _, err := f.matches.CancelMatch(ctx, matchID, admin); err != nil {
			return "", err
		}
		return models.MatchStatusCancelled, nil
	}
	if !script.shuffle {
		return models.MatchStatusWaiting, nil
	}

	teams, err := f.matches.ShuffleTeams(ctx, matchID, admin)
	if err != nil {
		return "", err
	}
	if !script.start {
		return models.MatchStatusWaiting, nil
	}
	if _, err := f.matches.StartMatch(ctx, matchID, admin); err != nil {
		return "", err
	}

	for i, event := range script.events {
		team := teams.TeamA
		if event.team == models.TeamB {
			team = teams.TeamB
		}
		playerID := team.Players[event.slot%len(team.Players)].Player.ID
		minute := (i + 1) * 5

		if _, err := f.matches.AddEvent(ctx, matchID, admin, models.AddEventRequest{
			PlayerID:  playerID,
			EventType: event.eventType,
			Minute:    &minute,
		}); err != nil {
			return "", fmt.Errorf("add %s: %w", event.eventType, err)
		}
	}

	if !script.finish {
		return models.MatchStatusInProgress, nil
	}
	if _, err := f.matches.FinishMatch(ctx, matchID, admin); err != nil {
		return "", err
	}

	// Finished matches are backdated so the history reads naturally.
	playedOn := time.Now().AddDate(0, 0, -script.daysAgo)
	if err := f.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ?", matchID).
		Update("match_date", playedOn.Format("2006-01-02")).Error; err != nil {
		return "", err
	}
	return models.MatchStatusFinished, nil
}

// ClearAllData removes every row written by the API, children first.
func (f *Fixtures) ClearAllData(ctx context.Context) error {
	slog.Info("clearing all fixture data")

	db := f.db.WithContext(ctx)
	tables := []interface{}{
		&models.Event{},
		&models.RatingHistory{},
		&models.Participation{},
		&models.Team{},
		&models.Match{},
		&models.Player{},
		&authModels.RefreshToken{},
		&authModels.User{},
	}

	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table %T: %w", table, err)
		}
	}

	if db.Dialector.Name() == "postgres" {
		sequences := []string{
			"users_id_seq",
			"refresh_tokens_id_seq",
			"players_id_seq",
			"matches_id_seq",
			"match_teams_id_seq",
			"match_participants_id_seq",
			"match_events_id_seq",
			"rating_history_id_seq",
		}
		for _, seq := range sequences {
			if err := db.Exec("ALTER SEQUENCE " + seq + " RESTART WITH 1").Error; err != nil {
				slog.Warn("failed to reset sequence", "sequence", seq, "error", err)
			}
		}
	}

	slog.Info("all fixture data cleared")
	return nil
}
