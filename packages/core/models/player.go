package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Player carries career statistics. It is created together with its user and
// only mutated by profile updates and match finish propagation.
type Player struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Nickname      *string   `gorm:"size:255" json:"nickname"`
	Image         *string   `gorm:"size:512" json:"image"`
	Goals         int       `gorm:"not null;default:0" json:"goals"`
	Assists       int       `gorm:"not null;default:0" json:"assists"`
	Tackles       int       `gorm:"not null;default:0" json:"tackles"`
	Mvps          int       `gorm:"not null;default:0" json:"mvps"`
	Wins          int       `gorm:"not null;default:0" json:"wins"`
	Matches       int       `gorm:"not null;default:0" json:"matches"`
	AverageRating float64   `gorm:"type:decimal(4,2);not null;default:0" json:"average_rating"`
	WinPercentage float64   `gorm:"-" json:"win_percentage"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Player) TableName() string {
	return "players"
}

func (p *Player) AfterFind(tx *gorm.DB) error {
	p.WinPercentage = p.CalculateWinPercentage()
	return nil
}

func (p *Player) CalculateWinPercentage() float64 {
	if p.Matches == 0 {
		return 0
	}
	return math.Round(float64(p.Wins)/float64(p.Matches)*100*100) / 100
}

func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		ID:       p.ID,
		Name:     p.Name,
		Nickname: p.Nickname,
		Image:    p.Image,
	}
}

type PlayerSummary struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Nickname *string `json:"nickname"`
	Image    *string `json:"image"`
}

type UpdatePlayerRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Nickname *string `json:"nickname" binding:"omitempty,max=255"`
}

type PaginatedPlayersResponse struct {
	Data       []Player `json:"data"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
}
