package attachments

import "context"

// Store persists attachment rows. Lists are returned newest first.
type Store interface {
	List(ctx context.Context, parent Parent) ([]Attachment, error)
	Insert(ctx context.Context, parent Parent, a Attachment) error
	// RemoveAt deletes the attachment at index of the parent's current list,
	// reading and deleting atomically. Out-of-range indexes return
	// ErrInvalidIndex and leave the list unchanged.
	RemoveAt(ctx context.Context, parent Parent, index int) (Attachment, error)
	RemoveAll(ctx context.Context, parent Parent) ([]Attachment, error)
}
