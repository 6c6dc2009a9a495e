// Package attachments implements the attachment registry: the ordered list of
// stored files owned by a document or an approval request.
package attachments

import (
	"time"

	"github.com/google/uuid"
)

// ParentKind names the type of record that owns an attachment.
type ParentKind string

const (
	ParentDocument ParentKind = "document"
	ParentApproval ParentKind = "approval"
)

// Parent identifies the owner of an attachment list.
type Parent struct {
	Kind ParentKind
	ID   uuid.UUID
}

// DocumentParent returns the parent reference for a document.
func DocumentParent(id uuid.UUID) Parent { return Parent{Kind: ParentDocument, ID: id} }

// ApprovalParent returns the parent reference for an approval request.
func ApprovalParent(id uuid.UUID) Parent { return Parent{Kind: ParentApproval, ID: id} }

// Attachment is one stored file. Key, Bucket, and Storage record where the
// blob lives; Hash is the BLAKE3 digest computed at upload when known.
type Attachment struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Key       string    `json:"key,omitempty"`
	Bucket    string    `json:"bucket,omitempty"`
	Storage   string    `json:"storage,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// List is a parent's attachments, newest first. Count is always len(Attachments).
type List struct {
	Attachments []Attachment `json:"attachments"`
	Count       int          `json:"attachment_count"`
}

// NewList wraps items, deriving the count.
func NewList(items []Attachment) *List {
	if items == nil {
		items = []Attachment{}
	}
	return &List{Attachments: items, Count: len(items)}
}
