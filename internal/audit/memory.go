package audit

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/courier/pkg/pagination"
)

// Memory is an in-process audit log for tests and local development.
type Memory struct {
	mu         sync.Mutex
	entries    []Entry
	logger     *slog.Logger
	pagination pagination.Config
}

// NewMemory creates an empty in-memory audit log.
func NewMemory(logger *slog.Logger, pagination pagination.Config) *Memory {
	return &Memory{
		logger:     logger.With("system", "audit"),
		pagination: pagination,
	}
}

func (m *Memory) Handler() *Handler {
	return NewHandler(m, m.logger, m.pagination)
}

func (m *Memory) Record(ctx context.Context, entry Entry) error {
	if err := validate(entry); err != nil {
		return err
	}
	entry.stamp(time.Now().UTC())

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

// Entries returns a copy of every recorded entry in recording order.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

func (m *Memory) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(m.pagination)

	m.mu.Lock()
	matched := make([]Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if !filters.Matches(e) {
			continue
		}
		if page.Search != nil && !strings.Contains(e.Detail, *page.Search) && !strings.Contains(e.EntityID, *page.Search) {
			continue
		}
		matched = append(matched, e)
	}
	m.mu.Unlock()

	slices.SortStableFunc(matched, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := min(page.Offset(), len(matched))
	end := min(start+page.PageSize, len(matched))

	result := pagination.NewPageResult(matched[start:end], len(matched), page.Page, page.PageSize)
	return &result, nil
}

var _ System = (*Memory)(nil)
