package attachments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/courier/pkg/repository"
)

type repo struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL attachment store. Ordering uses the
// insertion sequence so rows created in the same instant stay stable.
func NewStore(db *sql.DB) Store {
	return &repo{db: db}
}

const listQuery = `
	SELECT ` + columns + `
	FROM attachments
	WHERE parent_kind = $1 AND parent_id = $2
	ORDER BY seq DESC`

func (r *repo) List(ctx context.Context, parent Parent) ([]Attachment, error) {
	items, err := repository.QueryMany(ctx, r.db, listQuery, []any{parent.Kind, parent.ID}, scanAttachment)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, parent Parent, a Attachment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attachments(id, parent_kind, parent_id, name, size, type, url, key, bucket, storage, hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, parent.Kind, parent.ID, a.Name, a.Size, a.Type, a.URL, a.Key, a.Bucket, a.Storage, a.Hash, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (r *repo) RemoveAt(ctx context.Context, parent Parent, index int) (Attachment, error) {
	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Attachment, error) {
		items, err := repository.QueryMany(ctx, tx, listQuery+" FOR UPDATE", []any{parent.Kind, parent.ID}, scanAttachment)
		if err != nil {
			return Attachment{}, fmt.Errorf("lock attachments: %w", err)
		}

		if index < 0 || index >= len(items) {
			return Attachment{}, ErrInvalidIndex
		}

		target := items[index]
		if err := repository.ExecExpectOne(ctx, tx, "DELETE FROM attachments WHERE id = $1", target.ID); err != nil {
			return Attachment{}, fmt.Errorf("delete attachment: %w", err)
		}
		return target, nil
	})
}

func (r *repo) RemoveAll(ctx context.Context, parent Parent) ([]Attachment, error) {
	q := `
		DELETE FROM attachments
		WHERE parent_kind = $1 AND parent_id = $2
		RETURNING ` + columns

	items, err := repository.QueryMany(ctx, r.db, q, []any{parent.Kind, parent.ID}, scanAttachment)
	if err != nil {
		return nil, fmt.Errorf("delete attachments: %w", err)
	}
	return items, nil
}
