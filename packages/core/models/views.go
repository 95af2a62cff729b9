package models

import "time"

// Read models returned by the match endpoints. They are assembled explicitly
// from the persistence rows.

type ParticipantView struct {
	Player       PlayerSummary `json:"player"`
	TeamID       *uint         `json:"team_id"`
	JoinedAt     time.Time     `json:"joined_at"`
	GoalsScored  int           `json:"goals_scored"`
	AssistsMade  int           `json:"assists_made"`
	TacklesMade  int           `json:"tackles_made"`
	DefensesMade int           `json:"defenses_made"`
}

type TeamView struct {
	ID        uint              `json:"id"`
	TeamName  TeamName          `json:"team_name"`
	TeamColor string            `json:"team_color"`
	Score     int               `json:"score"`
	Players   []ParticipantView `json:"players"`
}

type EventView struct {
	ID          uint          `json:"id"`
	EventType   EventType     `json:"event_type"`
	Minute      int           `json:"minute"`
	Description *string       `json:"description"`
	Player      PlayerSummary `json:"player"`
	TeamID      *uint         `json:"team_id"`
	TeamName    *TeamName     `json:"team_name"`
	CreatedAt   time.Time     `json:"created_at"`
}

type MatchDetail struct {
	Match
	Admin            PlayerSummary     `json:"admin"`
	Capacity         int               `json:"capacity"`
	PerTeamCapacity  int               `json:"per_team_capacity"`
	ParticipantCount int               `json:"participant_count"`
	Participants     []ParticipantView `json:"participants"`
	Teams            []TeamView        `json:"teams"`
	Events           []EventView       `json:"events"`
}

type ShuffleResult struct {
	TeamA TeamView `json:"team_a"`
	TeamB TeamView `json:"team_b"`
}
