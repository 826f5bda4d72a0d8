package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/seidelmaycon/game-api/config"
	"github.com/seidelmaycon/game-api/internal/domain/entity"
	"github.com/seidelmaycon/game-api/internal/domain/repository"
	pginfra "github.com/seidelmaycon/game-api/internal/infrastructure/postgres"
	sqliteinfra "github.com/seidelmaycon/game-api/internal/infrastructure/sqlite"
	"github.com/seidelmaycon/game-api/pkg/helpers"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
	demoGame     = "Brevity"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var (
		users  repository.UserRepository
		events repository.GameEventRepository
	)
	switch cfg.DBDriver {
	case "sqlite", "sqlite3":
		db, err := sqliteinfra.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite: %v", err)
		}
		defer func() { _ = db.Close() }()
		users, events = sqliteinfra.NewUserRepository(db), sqliteinfra.NewGameEventRepository(db)
	default:
		pool, err := pginfra.Open(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2}, logger)
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}
		defer pool.Close()
		users, events = pginfra.NewUserRepository(pool), pginfra.NewGameEventRepository(pool)
	}

	u, err := seedUser(ctx, users)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d email=%s password=%s\n", u.ID, u.Email, demoPassword)

	occurred := entity.NormalizeOccurredAt(time.Now().Add(-24 * time.Hour).Truncate(time.Hour))
	e := &entity.GameEvent{UserID: u.ID, GameName: demoGame, EventType: entity.EventTypeCompleted, OccurredAt: occurred}
	switch err := events.Create(ctx, e); {
	case errors.Is(err, repository.ErrDuplicate):
		fmt.Println("demo event already present")
	case err != nil:
		log.Fatalf("failed to seed event: %v", err)
	default:
		fmt.Printf("seeded event: id=%d game=%s occurred_at=%s\n", e.ID, e.GameName, e.OccurredAt.Format(time.RFC3339))
	}
}

func seedUser(ctx context.Context, users repository.UserRepository) (*entity.User, error) {
	if u, err := users.GetByEmail(ctx, demoEmail); err == nil {
		return u, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hash, err := helpers.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: demoEmail, PasswordHash: hash}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
