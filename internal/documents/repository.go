package documents

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/pagination"
	"github.com/JaimeStill/courier/pkg/query"
	"github.com/JaimeStill/courier/pkg/repository"
)

type repo struct {
	db         *sql.DB
	pagination pagination.Config
}

// NewStore creates a PostgreSQL document store.
func NewStore(db *sql.DB, pagination pagination.Config) Store {
	return &repo{db: db, pagination: pagination}
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Barcode", "Subject", "Sender", "Receiver")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryInt(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

const nextBarcodeQuery = `
	INSERT INTO barcode_sequences(prefix, year, value)
	VALUES ($1, $2, 1)
	ON CONFLICT (prefix, year) DO UPDATE SET value = barcode_sequences.value + 1
	RETURNING value`

func (r *repo) Insert(ctx context.Context, d Document) (*Document, error) {
	prefix := d.Type.BarcodePrefix()
	year := d.CreatedAt.Year()

	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		seq, err := repository.QueryInt(ctx, tx, nextBarcodeQuery, prefix, year)
		if err != nil {
			return Document{}, fmt.Errorf("next barcode: %w", err)
		}
		d.Barcode = FormatBarcode(prefix, year, seq)

		q := `
			INSERT INTO documents(id, barcode, type, subject, sender, receiver, priority, document_date, notes, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, barcode, type, subject, sender, receiver, priority, document_date, notes, created_by, created_at, updated_at`

		args := []any{
			d.ID,
			d.Barcode,
			d.Type,
			d.Subject,
			d.Sender,
			d.Receiver,
			d.Priority,
			d.DocumentDate,
			d.Notes,
			d.CreatedBy,
			d.CreatedAt,
			d.UpdatedAt,
		}
		return repository.QueryOne(ctx, tx, q, args, scanDocument)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &doc, nil
}

func (r *repo) FindByBarcode(ctx context.Context, barcode string) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Barcode", barcode)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) SearchPrefix(ctx context.Context, prefix string, limit int) ([]Document, error) {
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "Barcode"}).
		WherePrefix("Barcode", &prefix).
		BuildPage(1, limit)

	docs, err := repository.QueryMany(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("search barcodes: %w", err)
	}
	return docs, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM documents WHERE id = $1", id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Timeline(ctx context.Context, barcode string) ([]TimelineEntry, error) {
	q := `
		SELECT ` + timelineColumns + `
		FROM timeline_entries
		WHERE barcode = $1
		ORDER BY created_at DESC, seq DESC`

	entries, err := repository.QueryMany(ctx, r.db, q, []any{barcode}, scanTimelineEntry)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	return entries, nil
}

func (r *repo) AppendTimeline(ctx context.Context, e TimelineEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timeline_entries(id, barcode, message, actor, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Barcode, e.Message, e.Actor, e.CreatedAt,
	)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}
