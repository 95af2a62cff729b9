package services

import (
	"strings"

	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func loadPlayerSummaries(db *gorm.DB, ids []uint) (map[uint]models.PlayerSummary, error) {
	summaries := make(map[uint]models.PlayerSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var players []models.Player
	if err := db.Where("id IN ?", uniqueIDs(ids)).Find(&players).Error; err != nil {
		return nil, err
	}
	for i := range players {
		summaries[players[i].ID] = players[i].Summary()
	}
	return summaries, nil
}

func summaryFor(summaries map[uint]models.PlayerSummary, id uint) models.PlayerSummary {
	if summary, ok := summaries[id]; ok {
		return summary
	}
	return models.PlayerSummary{ID: id}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func buildMatchSummaries(db *gorm.DB, matches []models.Match) ([]models.MatchSummary, error) {
	summaries := make([]models.MatchSummary, 0, len(matches))
	if len(matches) == 0 {
		return summaries, nil
	}

	matchIDs := make([]uint, 0, len(matches))
	adminIDs := make([]uint, 0, len(matches))
	for _, match := range matches {
		matchIDs = append(matchIDs, match.ID)
		adminIDs = append(adminIDs, match.AdminID)
	}

	type participantCount struct {
		MatchID uint
		Total   int64
	}
	var counts []participantCount
	if err := db.Model(&models.Participation{}).
		Select("match_id, COUNT(*) AS total").
		Where("match_id IN ?", matchIDs).
		Group("match_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByMatch := make(map[uint]int64, len(counts))
	for _, row := range counts {
		countByMatch[row.MatchID] = row.Total
	}

	admins, err := loadPlayerSummaries(db, adminIDs)
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		summaries = append(summaries, models.MatchSummary{
			Match:            match,
			Admin:            summaryFor(admins, match.AdminID),
			ParticipantCount: countByMatch[match.ID],
			Capacity:         match.RosterCapacity(),
		})
	}
	return summaries, nil
}

func participantView(p models.Participation, players map[uint]models.PlayerSummary) models.ParticipantView {
	return models.ParticipantView{
		Player:       summaryFor(players, p.PlayerID),
		TeamID:       p.TeamID,
		JoinedAt:     p.JoinedAt,
		GoalsScored:  p.GoalsScored,
		AssistsMade:  p.AssistsMade,
		TacklesMade:  p.TacklesMade,
		DefensesMade: p.DefensesMade,
	}
}

func teamViews(teams []models.Team, participations []models.Participation, players map[uint]models.PlayerSummary) []models.TeamView {
	views := make([]models.TeamView, 0, len(teams))
	for _, team := range teams {
		view := models.TeamView{
			ID:        team.ID,
			TeamName:  team.TeamName,
			TeamColor: team.TeamColor,
			Score:     team.Score,
			Players:   []models.ParticipantView{},
		}
		for _, p := range participations {
			if p.TeamID != nil && *p.TeamID == team.ID {
				view.Players = append(view.Players, participantView(p, players))
			}
		}
		views = append(views, view)
	}
	return views
}

func eventView(event models.Event, players map[uint]models.PlayerSummary, teamNames map[uint]models.TeamName) models.EventView {
	view := models.EventView{
		ID:          event.ID,
		EventType:   event.EventType,
		Minute:      event.Minute,
		Description: event.Description,
		Player:      summaryFor(players, event.PlayerID),
		TeamID:      event.TeamID,
		CreatedAt:   event.CreatedAt,
	}
	if event.TeamID != nil {
		if name, ok := teamNames[*event.TeamID]; ok {
			view.TeamName = &name
		}
	}
	return view
}

func loadTeams(db *gorm.DB, matchID uint) ([]models.Team, error) {
	var teams []models.Team
	err := db.Where("match_id = ?", matchID).Order("team_name ASC").Find(&teams).Error
	return teams, err
}

func teamNamesByID(teams []models.Team) map[uint]models.TeamName {
	names := make(map[uint]models.TeamName, len(teams))
	for _, team := range teams {
		names[team.ID] = team.TeamName
	}
	return names
}

func loadEventViews(db *gorm.DB, matchID uint, eventType *models.EventType, teams []models.Team) ([]models.EventView, error) {
	query := db.Where("match_id = ?", matchID)
	if eventType != nil {
		query = query.Where("event_type = ?", *eventType)
	}

	var events []models.Event
	if err := query.Order("minute ASC").Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	playerIDs := make([]uint, 0, len(events))
	for _, event := range events {
		playerIDs = append(playerIDs, event.PlayerID)
	}
	players, err := loadPlayerSummaries(db, playerIDs)
	if err != nil {
		return nil, err
	}

	names := teamNamesByID(teams)
	views := make([]models.EventView, 0, len(events))
	for _, event := range events {
		views = append(views, eventView(event, players, names))
	}
	return views, nil
}

func buildMatchDetail(db *gorm.DB, match *models.Match) (*models.MatchDetail, error) {
	var participations []models.Participation
	if err := db.Where("match_id = ?", match.ID).Order("joined_at ASC").Order("id ASC").Find(&participations).Error; err != nil {
		return nil, err
	}

	teams, err := loadTeams(db, match.ID)
	if err != nil {
		return nil, err
	}

	events, err := loadEventViews(db, match.ID, nil, teams)
	if err != nil {
		return nil, err
	}

	playerIDs := []uint{match.AdminID}
	for _, p := range participations {
		playerIDs = append(playerIDs, p.PlayerID)
	}
	players, err := loadPlayerSummaries(db, playerIDs)
	if err != nil {
		return nil, err
	}

	participants := make([]models.ParticipantView, 0, len(participations))
	for _, p := range participations {
		participants = append(participants, participantView(p, players))
	}

	return &models.MatchDetail{
		Match:            *match,
		Admin:            summaryFor(players, match.AdminID),
		Capacity:         match.RosterCapacity(),
		PerTeamCapacity:  match.PerTeamCapacity(),
		ParticipantCount: len(participations),
		Participants:     participants,
		Teams:            teamViews(teams, participations, players),
		Events:           events,
	}, nil
}

func buildShuffleResult(db *gorm.DB, matchID uint) (*models.ShuffleResult, error) {
	var participations []models.Participation
	if err := db.Where("match_id = ? AND team_id IS NOT NULL", matchID).Order("id ASC").Find(&participations).Error; err != nil {
		return nil, err
	}

	teams, err := loadTeams(db, matchID)
	if err != nil {
		return nil, err
	}

	playerIDs := make([]uint, 0, len(participations))
	for _, p := range participations {
		playerIDs = append(playerIDs, p.PlayerID)
	}
	players, err := loadPlayerSummaries(db, playerIDs)
	if err != nil {
		return nil, err
	}

	result := &models.ShuffleResult{}
	for _, view := range teamViews(teams, participations, players) {
		switch view.TeamName {
		case models.TeamA:
			result.TeamA = view
		case models.TeamB:
			result.TeamB = view
		}
	}
	return result, nil
}
