package models

import "time"

// Participation links a player to a match with per-match counters.
type Participation struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID      uint      `gorm:"not null;uniqueIndex:idx_match_participants_match_player" json:"match_id"`
	PlayerID     uint      `gorm:"not null;uniqueIndex:idx_match_participants_match_player;index" json:"player_id"`
	TeamID       *uint     `gorm:"index" json:"team_id"`
	JoinedAt     time.Time `gorm:"not null" json:"joined_at"`
	GoalsScored  int       `gorm:"not null;default:0" json:"goals_scored"`
	AssistsMade  int       `gorm:"not null;default:0" json:"assists_made"`
	TacklesMade  int       `gorm:"not null;default:0" json:"tackles_made"`
	DefensesMade int       `gorm:"not null;default:0" json:"defenses_made"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Participation) TableName() string {
	return "match_participants"
}

func (p *Participation) HasTeam() bool {
	return p.TeamID != nil
}
