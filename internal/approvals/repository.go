package approvals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/repository"
)

type repo struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL approval store.
func NewStore(db *sql.DB) Store {
	return &repo{db: db}
}

const nextNumberQuery = `
	INSERT INTO approval_sequences(year, value)
	VALUES ($1, 1)
	ON CONFLICT (year) DO UPDATE SET value = approval_sequences.value + 1
	RETURNING value`

func (r *repo) Insert(ctx context.Context, req Request) (*Request, error) {
	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		seq, err := repository.QueryInt(ctx, tx, nextNumberQuery, req.CreatedAt.Year())
		if err != nil {
			return Request{}, fmt.Errorf("next approval number: %w", err)
		}
		req.ApprovalNumber = FormatNumber(req.CreatedAt.Year(), seq)

		q := `
			INSERT INTO approval_requests(id, approval_number, title, description, requester_id, manager_id,
				attachment_url, status, is_seen, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING ` + columns

		args := []any{
			req.ID,
			req.ApprovalNumber,
			req.Title,
			req.Description,
			req.RequesterID,
			req.ManagerID,
			req.AttachmentURL,
			req.Status,
			req.IsSeen,
			req.CreatedAt,
			req.UpdatedAt,
		}
		return repository.QueryOne(ctx, tx, q, args, scanRequest)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrValidationFailed)
	}
	return &created, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Request, error) {
	q := `SELECT ` + columns + ` FROM approval_requests WHERE id = $1`

	req, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrValidationFailed)
	}
	return &req, nil
}

func (r *repo) ListByRequester(ctx context.Context, requester uuid.UUID) ([]Request, error) {
	q := `
		SELECT ` + columns + `
		FROM approval_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC`

	items, err := repository.QueryMany(ctx, r.db, q, []any{requester}, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	return items, nil
}

func (r *repo) ListPending(ctx context.Context, manager uuid.UUID) ([]Request, error) {
	q := `
		SELECT ` + columns + `
		FROM approval_requests
		WHERE manager_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	items, err := repository.QueryMany(ctx, r.db, q, []any{manager}, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	return items, nil
}

func (r *repo) Decide(ctx context.Context, id uuid.UUID, d Decision) (*Request, error) {
	position, err := encodePosition(d.SignaturePosition)
	if err != nil {
		return nil, fmt.Errorf("encode position: %w", err)
	}

	var signatureType *string
	if d.SignatureType != nil {
		s := string(*d.SignatureType)
		signatureType = &s
	}

	q := `
		UPDATE approval_requests
		SET status = $2, rejection_reason = $3, signature_type = $4, signature_position = $5,
			is_seen = false, decided_at = $6, updated_at = $6
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + columns

	args := []any{id, d.Status, d.RejectionReason, signatureType, position, d.At}

	req, err := repository.QueryOne(ctx, r.db, q, args, scanRequest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.conflict(ctx, id, ErrAlreadyDecided)
	}
	if err != nil {
		return nil, fmt.Errorf("decide request: %w", err)
	}
	return &req, nil
}

func (r *repo) MarkSeen(ctx context.Context, id, requester uuid.UUID) (bool, error) {
	err := repository.ExecExpectOne(ctx, r.db, `
		UPDATE approval_requests
		SET is_seen = true
		WHERE id = $1 AND requester_id = $2 AND status <> 'pending' AND is_seen = false`,
		id, requester,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}
	return true, nil
}

func (r *repo) SetSigned(ctx context.Context, id uuid.UUID, url string) (*Request, error) {
	q := `
		UPDATE approval_requests
		SET signed_attachment_url = $2, updated_at = now()
		WHERE id = $1 AND status = 'approved'
		RETURNING ` + columns

	req, err := repository.QueryOne(ctx, r.db, q, []any{id, url}, scanRequest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.conflict(ctx, id, ErrValidationFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("set signed attachment: %w", err)
	}
	return &req, nil
}

func (r *repo) CountUnseen(ctx context.Context, requester uuid.UUID) (int, error) {
	return repository.QueryInt(ctx, r.db, `
		SELECT COUNT(*) FROM approval_requests
		WHERE requester_id = $1 AND status <> 'pending' AND is_seen = false`,
		requester,
	)
}

func (r *repo) CountPending(ctx context.Context, manager uuid.UUID) (int, error) {
	return repository.QueryInt(ctx, r.db, `
		SELECT COUNT(*) FROM approval_requests
		WHERE manager_id = $1 AND status = 'pending'`,
		manager,
	)
}

// conflict distinguishes a missing request from one whose state rejected
// a conditional update.
func (r *repo) conflict(ctx context.Context, id uuid.UUID, stateErr error) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}
	return stateErr
}
