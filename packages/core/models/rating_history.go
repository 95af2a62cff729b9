package models

import "time"

type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

// RatingHistory records what a finished match did to one player's average.
// MatchID and TeamID are cleared when the match is deleted.
type RatingHistory struct {
	ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID      uint        `gorm:"not null;index" json:"player_id"`
	MatchID       *uint       `gorm:"index" json:"match_id"`
	TeamID        *uint       `json:"team_id"`
	Result        MatchResult `gorm:"size:10;not null" json:"result"`
	MatchRating   float64     `gorm:"type:decimal(4,2);not null" json:"match_rating"`
	AverageBefore float64     `gorm:"type:decimal(4,2);not null" json:"average_before"`
	AverageAfter  float64     `gorm:"type:decimal(4,2);not null" json:"average_after"`
	GoalsScored   int         `gorm:"not null;default:0" json:"goals_scored"`
	AssistsMade   int         `gorm:"not null;default:0" json:"assists_made"`
	TacklesMade   int         `gorm:"not null;default:0" json:"tackles_made"`
	DefensesMade  int         `gorm:"not null;default:0" json:"defenses_made"`
	IsMvp         bool        `gorm:"not null;default:false" json:"is_mvp"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (RatingHistory) TableName() string {
	return "rating_history"
}

type RatingHistoryEntry struct {
	RatingHistory
	Player PlayerSummary `json:"player"`
}
