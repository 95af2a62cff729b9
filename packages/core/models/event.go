package models

import "time"

type EventType string

const (
	EventGoal    EventType = "goal"
	EventAssist  EventType = "assist"
	EventTackle  EventType = "tackle"
	EventDefense EventType = "defense"
)

func (t EventType) IsValid() bool {
	return t.CounterColumn() != ""
}

// CounterColumn is the match_participants column bumped by this event.
func (t EventType) CounterColumn() string {
	switch t {
	case EventGoal:
		return "goals_scored"
	case EventAssist:
		return "assists_made"
	case EventTackle:
		return "tackles_made"
	case EventDefense:
		return "defenses_made"
	}
	return ""
}

type Event struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID     uint      `gorm:"not null;index:idx_match_events_match_type" json:"match_id"`
	PlayerID    uint      `gorm:"not null;index:idx_match_events_player_type" json:"player_id"`
	TeamID      *uint     `json:"team_id"`
	EventType   EventType `gorm:"size:10;not null;index:idx_match_events_match_type;index:idx_match_events_player_type" json:"event_type"`
	Minute      int       `gorm:"not null;default:0" json:"minute"`
	Description *string   `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return "match_events"
}

type AddEventRequest struct {
	PlayerID    uint      `json:"player_id" binding:"required"`
	EventType   EventType `json:"event_type" binding:"required,oneof=goal assist tackle defense"`
	Minute      *int      `json:"minute" binding:"omitempty,min=0"`
	Description *string   `json:"description" binding:"omitempty,max=255"`
}
