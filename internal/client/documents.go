package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/courier/internal/documents"
)

// Resolve returns the document a scanned or typed barcode identifies.
// Empty input fails locally with documents.ErrNotFound.
func (c *Client) Resolve(ctx context.Context, barcode string) (*documents.Document, error) {
	normalized := documents.NormalizeBarcode(barcode)
	if normalized == "" {
		return nil, documents.ErrNotFound
	}

	var doc documents.Document
	if err := c.get(ctx, "/barcodes/"+escape(normalized), nil, &doc); err != nil {
		return nil, lookupError(err)
	}
	return &doc, nil
}

// Timeline returns the server's timeline for barcode, newest first.
func (c *Client) Timeline(ctx context.Context, barcode string) ([]documents.TimelineEntry, error) {
	var entries []documents.TimelineEntry
	path := "/barcodes/" + escape(documents.NormalizeBarcode(barcode)) + "/timeline"
	if err := c.get(ctx, path, nil, &entries); err != nil {
		return nil, lookupError(err)
	}
	return entries, nil
}

// AppendTimeline records note on the timeline of barcode. at is the
// client-side timestamp the server keeps so optimistic copies reconcile.
func (c *Client) AppendTimeline(ctx context.Context, barcode, note string, at time.Time) (*documents.TimelineEntry, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, documents.ErrValidationFailed
	}

	at = at.UTC().Truncate(time.Millisecond)
	var entry documents.TimelineEntry
	path := "/barcodes/" + escape(documents.NormalizeBarcode(barcode)) + "/timeline"
	if err := c.send(ctx, http.MethodPost, path, documents.TimelineCommand{Note: note, At: &at}, &entry); err != nil {
		return nil, lookupError(err)
	}
	return &entry, nil
}

// lookupError reports failures that never produced a server response as
// documents.ErrLookupFailed, keeping the original message, so an unreachable
// server stays distinct from a missing record. Server errors and caller
// cancellation pass through unchanged.
func lookupError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", documents.ErrLookupFailed, err)
}

// TimelineView holds a barcode's timeline with optimistic local appends.
// Appended notes show immediately as pending and are reconciled against the
// server copy on the next Refresh.
type TimelineView struct {
	client  *Client
	barcode string
	now     func() time.Time

	mu      sync.Mutex
	entries []documents.TimelineEntry
}

// NewTimelineView creates an empty view of barcode's timeline.
func (c *Client) NewTimelineView(barcode string) *TimelineView {
	return &TimelineView{
		client:  c,
		barcode: documents.NormalizeBarcode(barcode),
		now:     time.Now,
	}
}

// Entries returns a copy of the current view.
func (v *TimelineView) Entries() []documents.TimelineEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]documents.TimelineEntry(nil), v.entries...)
}

// Refresh fetches the server timeline and merges it with pending local entries.
func (v *TimelineView) Refresh(ctx context.Context) error {
	server, err := v.client.Timeline(ctx, v.barcode)
	if err != nil {
		return err
	}
	v.apply(server)
	return nil
}

// Append shows note as a pending entry, then sends it. A blank note is
// rejected before the view changes. A failed send leaves the pending entry
// for the caller to retry or discard on Refresh.
func (v *TimelineView) Append(ctx context.Context, note string) (*documents.TimelineEntry, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, documents.ErrValidationFailed
	}

	at := v.now().UTC().Truncate(time.Millisecond)
	local := documents.TimelineEntry{
		Barcode:   v.barcode,
		Message:   note,
		Actor:     v.client.session.UserID,
		CreatedAt: at,
		Pending:   true,
	}

	v.mu.Lock()
	v.entries = append([]documents.TimelineEntry{local}, v.entries...)
	v.mu.Unlock()

	entry, err := v.client.AppendTimeline(ctx, v.barcode, note, at)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	for i, e := range v.entries {
		if e.Pending && e.Message == local.Message && e.CreatedAt.Equal(at) {
			v.entries[i] = *entry
			break
		}
	}
	v.mu.Unlock()
	return entry, nil
}

func (v *TimelineView) apply(server []documents.TimelineEntry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = documents.MergeTimeline(v.entries, server)
}
