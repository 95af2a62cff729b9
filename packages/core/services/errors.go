package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNoPlayerProfile    = errors.New("user has no player profile")
	ErrNotMatchAdmin      = errors.New("only the match admin can perform this action")
	ErrMatchFull          = errors.New("match is full")
	ErrMatchNotWaiting    = errors.New("match is not waiting for players")
	ErrAlreadyJoined      = errors.New("player already joined this match")
	ErrNotAParticipant    = errors.New("player is not a participant of this match")
	ErrAdminCannotLeave   = errors.New("the match admin cannot leave the match")
	ErrMatchStarted       = errors.New("match has already started")
	ErrMatchNotInProgress = errors.New("match is not in progress")
	ErrMatchClosed        = errors.New("match is already finished or cancelled")
	ErrNotPlayerOwner     = errors.New("you can only update your own player profile")
	ErrCodeExhausted      = errors.New("could not generate a unique match code")
)

// ValidationError carries field level messages keyed by JSON field name.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{
		Message: "The given data was invalid.",
		Fields:  map[string][]string{},
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(e.Fields[key], ", "))
	}
	return e.Message + " " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Err returns nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Reasons flattens an errors.Join result into its messages.
func Reasons(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var reasons []string
	for _, inner := range joined.Unwrap() {
		reasons = append(reasons, Reasons(inner)...)
	}
	return reasons
}
