package attachments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/courier/pkg/storage"
)

// maxParallelBlobDeletes bounds concurrent blob deletions during a cascade.
const maxParallelBlobDeletes = 8

// System manages a parent's attachment list and the blobs behind it.
// Every mutation returns the refreshed list so callers never reuse a stale index.
type System interface {
	List(ctx context.Context, parent Parent) (*List, error)
	Add(ctx context.Context, parent Parent, a Attachment) (*List, error)
	DeleteAt(ctx context.Context, parent Parent, index int) (*List, error)
	DeleteAll(ctx context.Context, parent Parent) error
}

type registry struct {
	store   Store
	storage storage.System
	logger  *slog.Logger
}

// New creates an attachment registry over store. Blobs owned by deleted
// attachments are removed from blobs when they resolve to managed storage.
func New(store Store, blobs storage.System, logger *slog.Logger) System {
	return &registry{
		store:   store,
		storage: blobs,
		logger:  logger.With("system", "attachments"),
	}
}

func (r *registry) List(ctx context.Context, parent Parent) (*List, error) {
	items, err := r.store.List(ctx, parent)
	if err != nil {
		return nil, err
	}
	return NewList(items), nil
}

func (r *registry) Add(ctx context.Context, parent Parent, a Attachment) (*List, error) {
	a.URL = strings.TrimSpace(a.URL)
	if a.URL == "" {
		return nil, ErrValidationFailed
	}
	if a.Name == "" {
		a.Name = path.Base(a.URL)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	if err := r.store.Insert(ctx, parent, a); err != nil {
		return nil, err
	}

	r.logger.Info("attachment added", "parent", parent.Kind, "parent_id", parent.ID, "name", a.Name)
	return r.List(ctx, parent)
}

func (r *registry) DeleteAt(ctx context.Context, parent Parent, index int) (*List, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	removed, err := r.store.RemoveAt(ctx, parent, index)
	if err != nil {
		return nil, err
	}

	r.deleteBlob(ctx, removed)
	r.logger.Info("attachment deleted", "parent", parent.Kind, "parent_id", parent.ID, "index", index, "id", removed.ID)
	return r.List(ctx, parent)
}

func (r *registry) DeleteAll(ctx context.Context, parent Parent) error {
	removed, err := r.store.RemoveAll(ctx, parent)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBlobDeletes)
	for _, a := range removed {
		g.Go(func() error {
			r.deleteBlob(gctx, a)
			return nil
		})
	}
	g.Wait()

	r.logger.Info("attachments cleared", "parent", parent.Kind, "parent_id", parent.ID, "count", len(removed))
	return nil
}

// deleteBlob removes the blob behind a deleted row. The row is already gone,
// so failures are logged rather than returned.
func (r *registry) deleteBlob(ctx context.Context, a Attachment) {
	key, err := r.blobKey(a)
	if errors.Is(err, storage.ErrForeignURL) {
		return
	}
	if err != nil {
		r.logger.Warn("attachment blob key unresolved", "id", a.ID, "url", a.URL, "error", err)
		return
	}

	if err := r.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("blob delete failed after row delete", "key", key, "error", err)
	}
}

func (r *registry) blobKey(a Attachment) (string, error) {
	if a.Key != "" {
		return a.Key, nil
	}
	key, err := r.storage.Resolve(a.URL)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", a.URL, err)
	}
	return key, nil
}
