// Package documents implements the correspondence archive: barcoded incoming
// and outgoing documents, their attachments and timelines, and barcode
// resolution for scanners.
package documents

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/users"
)

// Type distinguishes incoming from outgoing correspondence.
type Type string

const (
	Incoming Type = "incoming"
	Outgoing Type = "outgoing"
)

// BarcodePrefix returns the barcode prefix issued for documents of type t.
func (t Type) BarcodePrefix() string {
	if t == Outgoing {
		return "OUT"
	}
	return "IN"
}

// Priority is the handling urgency of a document.
type Priority string

const (
	PriorityNormal     Priority = "normal"
	PriorityUrgent     Priority = "urgent"
	PriorityVeryUrgent Priority = "very_urgent"
)

var priorityLabels = map[Priority]string{
	PriorityNormal:     "عادي",
	PriorityUrgent:     "عاجل",
	PriorityVeryUrgent: "عاجل جداً",
}

// Label returns the Arabic display label for p.
func (p Priority) Label() string {
	return priorityLabels[p]
}

// Document is an archived correspondence record. AttachmentCount always
// equals len(Attachments).
type Document struct {
	ID              uuid.UUID                `json:"id"`
	Barcode         string                   `json:"barcode"`
	Type            Type                     `json:"type"`
	Subject         string                   `json:"subject"`
	Sender          string                   `json:"sender"`
	Receiver        string                   `json:"receiver"`
	Priority        Priority                 `json:"priority"`
	DocumentDate    *time.Time               `json:"document_date,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	CreatedBy       string                   `json:"created_by"`
	Attachments     []attachments.Attachment `json:"attachments"`
	AttachmentCount int                      `json:"attachment_count"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

func (d *Document) withAttachments(l *attachments.List) {
	d.Attachments = l.Attachments
	d.AttachmentCount = l.Count
}

// FormatBarcode renders the barcode for the seq-th document of prefix in year.
func FormatBarcode(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// TimelineEntry is one event in a document's history. Pending marks an entry
// a client rendered before the server confirmed it.
type TimelineEntry struct {
	ID        uuid.UUID `json:"id"`
	Barcode   string    `json:"barcode"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
	Pending   bool      `json:"pending,omitempty"`
}

// TimelineCommand appends a note. At, when set, is the client's timestamp for
// the entry so an optimistic local copy can be matched on the next fetch.
type TimelineCommand struct {
	Note string     `json:"note"`
	At   *time.Time `json:"at,omitempty"`
}

// StampCommand composites the caller's signature or stamp onto the attachment
// at Index of the document's current list.
type StampCommand struct {
	Index    int                 `json:"index"`
	Page     int                 `json:"page"`
	Kind     users.AssetKind     `json:"kind"`
	Position placement.Placement `json:"position"`
}

// Preview is a time-limited read URL for an attachment.
type Preview struct {
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}
