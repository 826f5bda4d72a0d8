package entity

import (
	"strings"
	"time"
)

// EventType is the kind of a game event. Values are persisted as small
// integers, so existing constants must never be renumbered.
type EventType int16

const (
	EventTypeCompleted EventType = 0
)

var eventTypeNames = map[EventType]string{
	EventTypeCompleted: "completed",
}

// ParseEventType maps a canonical lowercase name to its EventType.
func ParseEventType(name string) (EventType, bool) {
	for t, n := range eventTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

func (t EventType) String() string {
	if n, ok := eventTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether t is a member of the closed set of event types.
func (t EventType) Valid() bool {
	_, ok := eventTypeNames[t]
	return ok
}

// NormalizeEventType returns the canonical form of a client-supplied type.
func NormalizeEventType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// GameEvent records that a user completed a game at OccurredAt.
// (UserID, GameName, EventType, OccurredAt) is unique.
type GameEvent struct {
	ID         int64
	UserID     int64
	GameName   string
	EventType  EventType
	OccurredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeOccurredAt truncates to the precision every supported store keeps,
// so an idempotent replay compares equal to what was persisted.
func NormalizeOccurredAt(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
