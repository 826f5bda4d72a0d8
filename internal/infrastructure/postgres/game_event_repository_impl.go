package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	"github.com/seidelmaycon/game-api/internal/domain/repository"
)

type GameEventRepository struct {
	pool *pgxpool.Pool
}

func NewGameEventRepository(pool *pgxpool.Pool) *GameEventRepository {
	return &GameEventRepository{pool: pool}
}

func (r *GameEventRepository) Create(ctx context.Context, e *entity.GameEvent) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO game_events (user_id, game_name, event_type, occurred_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, e.UserID, e.GameName, int16(e.EventType), e.OccurredAt)

	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert game event: %w", err)
	}
	return nil
}

func (r *GameEventRepository) FindByKey(ctx context.Context, key repository.GameEventKey) (*entity.GameEvent, error) {
	e := &entity.GameEvent{}
	var eventType int16
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, game_name, event_type, occurred_at, created_at, updated_at
		FROM game_events
		WHERE user_id = $1 AND game_name = $2 AND event_type = $3 AND occurred_at = $4
	`, key.UserID, key.GameName, int16(key.EventType), key.OccurredAt)

	if err := row.Scan(&e.ID, &e.UserID, &e.GameName, &eventType, &e.OccurredAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	e.EventType = entity.EventType(eventType)
	e.OccurredAt = e.OccurredAt.UTC()
	return e, nil
}

func (r *GameEventRepository) CountByUser(ctx context.Context, userID int64, eventType entity.EventType) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM game_events WHERE user_id = $1 AND event_type = $2
	`, userID, int16(eventType)).Scan(&n)
	return n, err
}

var _ repository.GameEventRepository = (*GameEventRepository)(nil)
