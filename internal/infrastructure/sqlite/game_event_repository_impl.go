package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	"github.com/seidelmaycon/game-api/internal/domain/repository"
)

type GameEventRepository struct {
	db *sql.DB
}

func NewGameEventRepository(db *DB) *GameEventRepository {
	return &GameEventRepository{db: db.sqlDB}
}

func (r *GameEventRepository) Create(ctx context.Context, e *entity.GameEvent) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO game_events (user_id, game_name, event_type, occurred_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.UserID, e.GameName, int64(e.EventType), toMicros(e.OccurredAt), toMicros(now), toMicros(now))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert game event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert game event id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (r *GameEventRepository) FindByKey(ctx context.Context, key repository.GameEventKey) (*entity.GameEvent, error) {
	e := &entity.GameEvent{}
	var eventType, occurred, created, updated int64
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, game_name, event_type, occurred_at, created_at, updated_at
		FROM game_events
		WHERE user_id = ? AND game_name = ? AND event_type = ? AND occurred_at = ?
	`, key.UserID, key.GameName, int64(key.EventType), toMicros(key.OccurredAt))

	if err := row.Scan(&e.ID, &e.UserID, &e.GameName, &eventType, &occurred, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	e.EventType = entity.EventType(eventType)
	e.OccurredAt = fromMicros(occurred)
	e.CreatedAt = fromMicros(created)
	e.UpdatedAt = fromMicros(updated)
	return e, nil
}

func (r *GameEventRepository) CountByUser(ctx context.Context, userID int64, eventType entity.EventType) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM game_events WHERE user_id = ? AND event_type = ?
	`, userID, int64(eventType)).Scan(&n)
	return n, err
}

var _ repository.GameEventRepository = (*GameEventRepository)(nil)
