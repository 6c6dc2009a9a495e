package users

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/query"
	"github.com/JaimeStill/courier/pkg/repository"
	"github.com/JaimeStill/courier/pkg/storage"
)

const returning = "RETURNING id, name, email, role, signature_key, stamp_key, created_at"

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger
}

// New creates a PostgreSQL-backed user directory implementing the System interface.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "users"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.storage, r.logger, maxUploadSize)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	u, err := repository.QueryOne(ctx, r.db, q, args, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) Managers(ctx context.Context) ([]User, error) {
	roles := make([]any, 0, len(auth.ManagerRoles))
	for _, role := range auth.ManagerRoles {
		roles = append(roles, role)
	}

	q, args := query.
		NewBuilder(projection, query.SortField{Field: "Name"}).
		WhereIn("Role", roles).
		Build()

	managers, err := repository.QueryMany(ctx, r.db, q, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("query managers: %w", err)
	}
	return managers, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*User, error) {
	cmd, err := cmd.normalize()
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO users(id, name, email, role)
		VALUES ($1, $2, $3, $4)
		` + returning

	u, err := repository.QueryOne(ctx, r.db, q, []any{uuid.New(), cmd.Name, cmd.Email, cmd.Role}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user created", "id", u.ID, "role", u.Role)
	return &u, nil
}

func (r *repo) SetAsset(ctx context.Context, id uuid.UUID, kind AssetKind, key string) (*User, error) {
	col, ok := assetColumns[kind]
	if !ok {
		return nil, ErrInvalidAsset
	}

	q := fmt.Sprintf("UPDATE users SET %s = $2 WHERE id = $1 %s", col, returning)

	u, err := repository.QueryOne(ctx, r.db, q, []any{id, key}, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user asset updated", "id", id, "kind", kind)
	return &u, nil
}
