package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/pagination"
)

// Store persists documents and their timelines. Barcodes passed to a Store
// are already normalized. Lookups of a missing barcode return ErrNotFound;
// any other error is a backend failure.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error)
	// Insert assigns the next barcode for d's type and creation year and
	// stores the document. The returned copy carries the barcode.
	Insert(ctx context.Context, d Document) (*Document, error)
	FindByBarcode(ctx context.Context, barcode string) (*Document, error)
	// SearchPrefix returns up to limit documents whose barcode starts with prefix.
	SearchPrefix(ctx context.Context, prefix string, limit int) ([]Document, error)
	// Delete removes the document and its timeline.
	Delete(ctx context.Context, id uuid.UUID) error
	// Timeline returns entries newest first.
	Timeline(ctx context.Context, barcode string) ([]TimelineEntry, error)
	AppendTimeline(ctx context.Context, e TimelineEntry) error
}
