package application

import (
	"context"
	"errors"
	"sync"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	repo "github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/internal/infrastructure/billing"
)

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	createFunc     func(ctx context.Context, u *entity.User) error
	getByIDFunc    func(ctx context.Context, id int64) (*entity.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, u *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, repo.ErrNotFound
}

// =============================================================================
// In-memory GameEventRepository
// =============================================================================

// memEventRepository enforces the same unique key as the real stores.
type memEventRepository struct {
	mu     sync.Mutex
	nextID int64
	events []*entity.GameEvent

	findErr   error
	createErr error
	creates   int
}

func keyOf(e *entity.GameEvent) repo.GameEventKey {
	return repo.GameEventKey{UserID: e.UserID, GameName: e.GameName, EventType: e.EventType, OccurredAt: e.OccurredAt}
}

func sameKey(a, b repo.GameEventKey) bool {
	return a.UserID == b.UserID && a.GameName == b.GameName && a.EventType == b.EventType && a.OccurredAt.Equal(b.OccurredAt)
}

func (m *memEventRepository) Create(_ context.Context, e *entity.GameEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	for _, x := range m.events {
		if sameKey(keyOf(x), keyOf(e)) {
			return repo.ErrDuplicate
		}
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *memEventRepository) FindByKey(_ context.Context, key repo.GameEventKey) (*entity.GameEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, x := range m.events {
		if sameKey(keyOf(x), key) {
			cp := *x
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memEventRepository) CountByUser(_ context.Context, userID int64, t entity.EventType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.events {
		if x.UserID == userID && x.EventType == t {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Other collaborators
// =============================================================================

type stubLookup struct {
	status billing.SubscriptionStatus
	calls  int
}

func (s *stubLookup) GetSubscriptionStatus(context.Context, int64) billing.SubscriptionStatus {
	s.calls++
	return s.status
}

type mockPublisher struct {
	published []any
	err       error
}

func (m *mockPublisher) PublishJSON(_ context.Context, body any) error {
	m.published = append(m.published, body)
	return m.err
}
