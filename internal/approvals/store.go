package approvals

import (
	"context"

	"github.com/google/uuid"
)

// Store persists approval requests. Lists are returned newest first.
type Store interface {
	// Insert assigns the next approval number for r's creation year.
	Insert(ctx context.Context, r Request) (*Request, error)
	Find(ctx context.Context, id uuid.UUID) (*Request, error)
	ListByRequester(ctx context.Context, requester uuid.UUID) ([]Request, error)
	ListPending(ctx context.Context, manager uuid.UUID) ([]Request, error)

	// Decide commits d only while the request is pending. A request that is
	// no longer pending fails with ErrAlreadyDecided and is left unchanged.
	Decide(ctx context.Context, id uuid.UUID, d Decision) (*Request, error)
	// MarkSeen flags a decided, unseen request of requester as seen and
	// reports whether it changed anything.
	MarkSeen(ctx context.Context, id, requester uuid.UUID) (bool, error)
	// SetSigned records the signed copy of an approved request. A request
	// that is not approved fails with ErrValidationFailed.
	SetSigned(ctx context.Context, id uuid.UUID, url string) (*Request, error)

	CountUnseen(ctx context.Context, requester uuid.UUID) (int, error)
	CountPending(ctx context.Context, manager uuid.UUID) (int, error)
}
