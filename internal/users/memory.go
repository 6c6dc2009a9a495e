package users

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/storage"
)

// Memory is an in-process user directory for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]User
	storage storage.System
	logger  *slog.Logger
}

// NewMemory creates an empty in-memory directory.
func NewMemory(store storage.System, logger *slog.Logger) *Memory {
	return &Memory{
		users:   make(map[uuid.UUID]User),
		storage: store,
		logger:  logger.With("system", "users"),
	}
}

func (m *Memory) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, m.storage, m.logger, maxUploadSize)
}

func (m *Memory) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) Managers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	managers := make([]User, 0)
	for _, u := range m.users {
		if u.IsManager() {
			managers = append(managers, u)
		}
	}
	slices.SortFunc(managers, func(a, b User) int { return cmp.Compare(a.Name, b.Name) })
	return managers, nil
}

func (m *Memory) Create(ctx context.Context, cmd CreateCommand) (*User, error) {
	cmd, err := cmd.normalize()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == cmd.Email {
			return nil, ErrDuplicate
		}
	}

	u := User{
		ID:        uuid.New(),
		Name:      cmd.Name,
		Email:     cmd.Email,
		Role:      cmd.Role,
		CreatedAt: time.Now().UTC(),
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *Memory) SetAsset(ctx context.Context, id uuid.UUID, kind AssetKind, key string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	switch kind {
	case AssetSignature:
		u.SignatureKey = &key
	case AssetStamp:
		u.StampKey = &key
	default:
		return nil, ErrInvalidAsset
	}

	m.users[id] = u
	return &u, nil
}

var _ System = (*Memory)(nil)
