package documents

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/pagination"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu         sync.Mutex
	docs       []Document
	timelines  map[string][]TimelineEntry
	sequences  map[string]int
	pagination pagination.Config
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(pagination pagination.Config) *MemoryStore {
	return &MemoryStore{
		timelines:  make(map[string][]TimelineEntry),
		sequences:  make(map[string]int),
		pagination: pagination,
	}
}

func (m *MemoryStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(m.pagination)

	m.mu.Lock()
	matched := make([]Document, 0, len(m.docs))
	for i := len(m.docs) - 1; i >= 0; i-- {
		d := m.docs[i]
		if !filters.matches(d) {
			continue
		}
		if page.Search != nil && !d.contains(*page.Search) {
			continue
		}
		matched = append(matched, d)
	}
	m.mu.Unlock()

	start := min(page.Offset(), len(matched))
	end := min(start+page.PageSize, len(matched))

	result := pagination.NewPageResult(matched[start:end], len(matched), page.Page, page.PageSize)
	return &result, nil
}

func (m *MemoryStore) Insert(ctx context.Context, d Document) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := d.Type.BarcodePrefix()
	year := d.CreatedAt.Year()
	key := FormatBarcode(prefix, year, 0)
	m.sequences[key]++
	d.Barcode = FormatBarcode(prefix, year, m.sequences[key])

	for _, existing := range m.docs {
		if existing.ID == d.ID || existing.Barcode == d.Barcode {
			return nil, ErrDuplicate
		}
	}

	m.docs = append(m.docs, d)
	return &d, nil
}

func (m *MemoryStore) FindByBarcode(ctx context.Context, barcode string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.docs {
		if d.Barcode == barcode {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) SearchPrefix(ctx context.Context, prefix string, limit int) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hits := []Document{}
	for _, d := range m.docs {
		if strings.HasPrefix(d.Barcode, prefix) {
			hits = append(hits, d)
		}
	}
	slices.SortFunc(hits, func(a, b Document) int {
		return strings.Compare(a.Barcode, b.Barcode)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.docs, func(d Document) bool { return d.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	delete(m.timelines, m.docs[i].Barcode)
	m.docs = slices.Delete(m.docs, i, i+1)
	return nil
}

func (m *MemoryStore) Timeline(ctx context.Context, barcode string) ([]TimelineEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := slices.Clone(m.timelines[barcode])
	if entries == nil {
		entries = []TimelineEntry{}
	}
	return entries, nil
}

// AppendTimeline keeps entries newest first by creation time; entries with
// equal timestamps keep insertion order, newest first.
func (m *MemoryStore) AppendTimeline(ctx context.Context, e TimelineEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.ContainsFunc(m.docs, func(d Document) bool { return d.Barcode == e.Barcode }) {
		return ErrNotFound
	}

	entries := m.timelines[e.Barcode]
	i := slices.IndexFunc(entries, func(x TimelineEntry) bool {
		return !x.CreatedAt.After(e.CreatedAt)
	})
	if i < 0 {
		i = len(entries)
	}
	m.timelines[e.Barcode] = slices.Insert(entries, i, e)
	return nil
}

func (f Filters) matches(d Document) bool {
	switch {
	case f.Type != nil && *f.Type != string(d.Type):
		return false
	case f.Priority != nil && *f.Priority != string(d.Priority):
		return false
	case f.Sender != nil && !containsFold(d.Sender, *f.Sender):
		return false
	case f.Receiver != nil && !containsFold(d.Receiver, *f.Receiver):
		return false
	case f.Barcode != nil && !strings.HasPrefix(d.Barcode, strings.ToUpper(*f.Barcode)):
		return false
	case f.After != nil && d.CreatedAt.Before(*f.After):
		return false
	case f.Before != nil && !d.CreatedAt.Before(*f.Before):
		return false
	}
	return true
}

func (d Document) contains(search string) bool {
	return containsFold(d.Barcode, search) ||
		containsFold(d.Subject, search) ||
		containsFold(d.Sender, search) ||
		containsFold(d.Receiver, search)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var _ Store = (*MemoryStore)(nil)
