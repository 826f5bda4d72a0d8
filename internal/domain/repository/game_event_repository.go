package repository

import (
	"context"
	"time"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
)

// GameEventKey is the idempotency key of a game event.
type GameEventKey struct {
	UserID     int64
	GameName   string
	EventType  entity.EventType
	OccurredAt time.Time
}

// GameEventRepository persists game events. Create must return ErrDuplicate
// when the key already exists.
type GameEventRepository interface {
	Create(ctx context.Context, e *entity.GameEvent) error
	FindByKey(ctx context.Context, key GameEventKey) (*entity.GameEvent, error)
	CountByUser(ctx context.Context, userID int64, eventType entity.EventType) (int64, error)
}

// Pinger reports store liveness for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
