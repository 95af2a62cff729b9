package models

import (
	"time"

	"gorm.io/datatypes"
)

type MatchStatus string

const (
	MatchStatusWaiting    MatchStatus = "waiting"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusFinished   MatchStatus = "finished"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusWaiting, MatchStatusInProgress, MatchStatusFinished, MatchStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusFinished || s == MatchStatusCancelled
}

type PlayersCount string

const (
	Format3v3 PlayersCount = "3vs3"
	Format5v5 PlayersCount = "5vs5"
	Format6v6 PlayersCount = "6vs6"
)

// RosterCapacity is the number of participants a match accepts. Unknown
// formats have no capacity, so they are always full.
func (p PlayersCount) RosterCapacity() int {
	switch p {
	case Format3v3:
		return 6
	case Format5v5:
		return 10
	case Format6v6:
		return 12
	}
	return 0
}

// PerTeamCapacity defaults to 5 for unknown formats.
func (p PlayersCount) PerTeamCapacity() int {
	switch p {
	case Format3v3:
		return 3
	case Format6v6:
		return 6
	}
	return 5
}

type EndMode string

const (
	EndModeGoals EndMode = "goals"
	EndModeTime  EndMode = "time"
	EndModeBoth  EndMode = "both"
)

func (m EndMode) UsesGoals() bool { return m == EndModeGoals || m == EndModeBoth }
func (m EndMode) UsesTime() bool  { return m == EndModeTime || m == EndModeBoth }

type Match struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string         `gorm:"size:6;not null;uniqueIndex" json:"code"`
	AdminID       uint           `gorm:"not null;index" json:"admin_id"`
	MatchDate     datatypes.Date `gorm:"type:date;not null" json:"match_date" swaggertype:"string" example:"2026-10-18"`
	MatchTime     datatypes.Time `gorm:"not null" json:"match_time" swaggertype:"string" example:"18:30:00"`
	Location      string         `gorm:"size:255;not null" json:"location"`
	PlayersCount  PlayersCount   `gorm:"size:10;not null" json:"players_count"`
	EndMode       EndMode        `gorm:"size:10;not null" json:"end_mode"`
	GoalLimit     *int           `json:"goal_limit"`
	TimeLimit     *int           `json:"time_limit"`
	Status        MatchStatus    `gorm:"size:20;not null;default:waiting;index" json:"status"`
	StartedAt     *time.Time     `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at"`
	CurrentMinute int            `gorm:"not null;default:0" json:"current_minute"`
	IsPaused      bool           `gorm:"not null;default:false" json:"is_paused"`
	WinningTeamID *uint          `json:"winning_team_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Match) TableName() string {
	return "matches"
}

func (m *Match) RosterCapacity() int {
	return m.PlayersCount.RosterCapacity()
}

func (m *Match) PerTeamCapacity() int {
	return m.PlayersCount.PerTeamCapacity()
}

func (m *Match) IsFull(participantCount int64) bool {
	return participantCount >= int64(m.RosterCapacity())
}

func (m *Match) IsAdmin(playerID uint) bool {
	return m.AdminID == playerID
}

// TimeLimitReached is only meaningful for matches ending on time.
func (m *Match) TimeLimitReached() bool {
	return m.EndMode.UsesTime() && m.TimeLimit != nil && m.CurrentMinute >= *m.TimeLimit
}

func (m *Match) GoalLimitReached(scores ...int) bool {
	if !m.EndMode.UsesGoals() || m.GoalLimit == nil {
		return false
	}
	for _, score := range scores {
		if score >= *m.GoalLimit {
			return true
		}
	}
	return false
}

type CreateMatchRequest struct {
	MatchDate    string       `json:"match_date" binding:"required,datetime=2006-01-02,notpast" example:"2026-10-18"`
	MatchTime    string       `json:"match_time" binding:"required,datetime=15:04" example:"18:30"`
	Location     string       `json:"location" binding:"required,max=255"`
	PlayersCount PlayersCount `json:"players_count" binding:"required,oneof=3vs3 5vs5 6vs6"`
	EndMode      EndMode      `json:"end_mode" binding:"required,oneof=goals time both"`
	GoalLimit    *int         `json:"goal_limit" binding:"omitempty,min=1,max=50"`
	TimeLimit    *int         `json:"time_limit" binding:"omitempty,min=1,max=300"`
}

type UpdateMatchRequest struct {
	MatchDate    *string       `json:"match_date" binding:"omitempty,datetime=2006-01-02,notpast"`
	MatchTime    *string       `json:"match_time" binding:"omitempty,datetime=15:04"`
	Location     *string       `json:"location" binding:"omitempty,min=1,max=255"`
	PlayersCount *PlayersCount `json:"players_count" binding:"omitempty,oneof=3vs3 5vs5 6vs6"`
	EndMode      *EndMode      `json:"end_mode" binding:"omitempty,oneof=goals time both"`
	GoalLimit    *int          `json:"goal_limit" binding:"omitempty,min=1,max=50"`
	TimeLimit    *int          `json:"time_limit" binding:"omitempty,min=1,max=300"`
}

type JoinMatchRequest struct {
	Code string `json:"code" binding:"required,len=6" example:"AB12CD"`
}

type MatchSummary struct {
	Match
	Admin            PlayerSummary `json:"admin"`
	ParticipantCount int64         `json:"participant_count"`
	Capacity         int           `json:"capacity"`
}

type PaginatedMatchResponse struct {
	Data       []MatchSummary `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}
