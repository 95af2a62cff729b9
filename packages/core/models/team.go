package models

import "time"

type TeamName string

const (
	TeamA TeamName = "team_a"
	TeamB TeamName = "team_b"
)

// Color is the fixed display color of each side.
func (n TeamName) Color() string {
	if n == TeamB {
		return "#4ECDC4"
	}
	return "#FF6B6B"
}

type Team struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID   uint      `gorm:"not null;uniqueIndex:idx_match_teams_match_name" json:"match_id"`
	TeamName  TeamName  `gorm:"size:10;not null;uniqueIndex:idx_match_teams_match_name" json:"team_name"`
	TeamColor string    `gorm:"size:50" json:"team_color"`
	Score     int       `gorm:"not null;default:0" json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "match_teams"
}
