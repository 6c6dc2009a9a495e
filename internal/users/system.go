package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// System defines the user directory operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Find(ctx context.Context, id uuid.UUID) (*User, error)
	Managers(ctx context.Context) ([]User, error)
	Create(ctx context.Context, cmd CreateCommand) (*User, error)
	SetAsset(ctx context.Context, id uuid.UUID, kind AssetKind, key string) (*User, error)
}

func (c CreateCommand) normalize() (CreateCommand, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Role = strings.ToLower(strings.TrimSpace(c.Role))
	if c.Name == "" || c.Email == "" || c.Role == "" {
		return c, ErrInvalidUser
	}
	return c, nil
}
