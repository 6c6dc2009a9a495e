package approvals

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and local development.
// Conditional updates hold the store lock, giving the same single-winner
// semantics as the PostgreSQL compare-and-set.
type MemoryStore struct {
	mu        sync.Mutex
	requests  []Request
	sequences map[int]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sequences: make(map[int]int)}
}

func (m *MemoryStore) Insert(ctx context.Context, r Request) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	year := r.CreatedAt.Year()
	m.sequences[year]++
	r.ApprovalNumber = FormatNumber(year, m.sequences[year])

	m.requests = append(m.requests, r)
	return &r, nil
}

func (m *MemoryStore) Find(ctx context.Context, id uuid.UUID) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := m.requests[i]
	return &r, nil
}

func (m *MemoryStore) ListByRequester(ctx context.Context, requester uuid.UUID) ([]Request, error) {
	return m.filter(func(r Request) bool { return r.RequesterID == requester }), nil
}

func (m *MemoryStore) ListPending(ctx context.Context, manager uuid.UUID) ([]Request, error) {
	return m.filter(func(r Request) bool {
		return r.ManagerID == manager && r.Status == StatusPending
	}), nil
}

func (m *MemoryStore) Decide(ctx context.Context, id uuid.UUID, d Decision) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := &m.requests[i]
	if r.Status != StatusPending {
		return nil, ErrAlreadyDecided
	}

	at := d.At
	r.Status = d.Status
	r.RejectionReason = d.RejectionReason
	r.SignatureType = d.SignatureType
	r.SignaturePosition = d.SignaturePosition
	r.IsSeen = false
	r.DecidedAt = &at
	r.UpdatedAt = at

	out := *r
	return &out, nil
}

func (m *MemoryStore) MarkSeen(ctx context.Context, id, requester uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return false, nil
	}
	r := &m.requests[i]
	if r.RequesterID != requester || r.Status == StatusPending || r.IsSeen {
		return false, nil
	}
	r.IsSeen = true
	return true, nil
}

func (m *MemoryStore) SetSigned(ctx context.Context, id uuid.UUID, url string) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := &m.requests[i]
	if r.Status != StatusApproved {
		return nil, ErrValidationFailed
	}
	r.SignedAttachmentURL = &url
	r.UpdatedAt = time.Now().UTC()

	out := *r
	return &out, nil
}

func (m *MemoryStore) CountUnseen(ctx context.Context, requester uuid.UUID) (int, error) {
	return len(m.filter(func(r Request) bool {
		return r.RequesterID == requester && r.Status != StatusPending && !r.IsSeen
	})), nil
}

func (m *MemoryStore) CountPending(ctx context.Context, manager uuid.UUID) (int, error) {
	return len(m.filter(func(r Request) bool {
		return r.ManagerID == manager && r.Status == StatusPending
	})), nil
}

func (m *MemoryStore) index(id uuid.UUID) int {
	return slices.IndexFunc(m.requests, func(r Request) bool { return r.ID == id })
}

// filter returns matching requests newest first.
func (m *MemoryStore) filter(keep func(Request) bool) []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, 0)
	for i := len(m.requests) - 1; i >= 0; i-- {
		if keep(m.requests[i]) {
			out = append(out, m.requests[i])
		}
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
