// Package approvals implements the approval request workflow: a requester
// routes evidence to a manager, who approves it with a signature or stamp
// placement or rejects it with a reason. Decisions are one-way.
package approvals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/users"
)

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether s is a decided state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is an approval request. RejectionReason is set only when
// rejected; SignatureType and SignaturePosition only when approved.
type Request struct {
	ID                  uuid.UUID            `json:"id"`
	ApprovalNumber      string               `json:"approval_number"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	RequesterID         uuid.UUID            `json:"requester_id"`
	ManagerID           uuid.UUID            `json:"manager_id"`
	AttachmentURL       string               `json:"attachment_url"`
	Status              Status               `json:"status"`
	RejectionReason     *string              `json:"rejection_reason,omitempty"`
	SignatureType       *users.AssetKind     `json:"signature_type,omitempty"`
	SignaturePosition   *placement.Placement `json:"signature_position,omitempty"`
	SignedAttachmentURL *string              `json:"signed_attachment_url,omitempty"`
	IsSeen              bool                 `json:"is_seen"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	DecidedAt           *time.Time           `json:"decided_at,omitempty"`
}

// FormatNumber renders the display number of the seq-th request of year.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("APR-%d-%04d", year, seq)
}

// CreateCommand opens a new request. ManagerID is a user id string so a
// missing manager can be told apart from a malformed one.
type CreateCommand struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ManagerID      string `json:"manager_id"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentName string `json:"attachment_name,omitempty"`
}

func (c CreateCommand) normalize() CreateCommand {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.ManagerID = strings.TrimSpace(c.ManagerID)
	c.AttachmentURL = strings.TrimSpace(c.AttachmentURL)
	c.AttachmentName = strings.TrimSpace(c.AttachmentName)
	return c
}

// Validate checks a command without touching any store. Clients run the
// same check before sending.
func (c CreateCommand) Validate() error {
	c = c.normalize()
	if c.AttachmentURL == "" {
		return ErrMissingAttachment
	}
	if c.ManagerID == "" {
		return ErrMissingManager
	}
	if _, err := uuid.Parse(c.ManagerID); err != nil {
		return fmt.Errorf("%w: manager_id is not a user id", ErrValidationFailed)
	}
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	return nil
}

// Decision actions accepted by Decide.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// DecisionCommand is the body of a manager's decision.
type DecisionCommand struct {
	Action            string               `json:"action"`
	SignatureType     users.AssetKind      `json:"signature_type,omitempty"`
	SignaturePosition *placement.Placement `json:"signature_position,omitempty"`
	// Page selects the evidence page the signature is composited onto;
	// zero selects the first page.
	Page   int    `json:"page,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks a decision without touching any store. Clients run the
// same check before sending.
func (c DecisionCommand) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Action)) {
	case ActionApprove:
		return validateApproval(c.SignatureType, c.SignaturePosition)
	case ActionReject:
		if strings.TrimSpace(c.Reason) == "" {
			return ErrMissingReason
		}
		return nil
	default:
		return fmt.Errorf("%w: action must be approve or reject", ErrValidationFailed)
	}
}

func validateApproval(kind users.AssetKind, position *placement.Placement) error {
	if _, err := users.ParseAssetKind(string(kind)); err != nil {
		return fmt.Errorf("%w: signature_type must be signature or stamp", ErrValidationFailed)
	}
	if position == nil {
		return fmt.Errorf("%w: signature_position is required", ErrValidationFailed)
	}
	if err := position.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

// ResendCommand overrides fields copied from the rejected request. Nil
// fields keep the original value.
type ResendCommand struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	ManagerID     *string `json:"manager_id,omitempty"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}

func (c ResendCommand) apply(r Request) CreateCommand {
	cmd := CreateCommand{
		Title:         r.Title,
		Description:   r.Description,
		ManagerID:     r.ManagerID.String(),
		AttachmentURL: r.AttachmentURL,
	}
	if c.Title != nil {
		cmd.Title = *c.Title
	}
	if c.Description != nil {
		cmd.Description = *c.Description
	}
	if c.ManagerID != nil {
		cmd.ManagerID = *c.ManagerID
	}
	if c.AttachmentURL != nil {
		cmd.AttachmentURL = *c.AttachmentURL
	}
	return cmd
}

// AttachSignedCommand records the signed copy of approved evidence.
type AttachSignedCommand struct {
	URL string `json:"url"`
}

// Count is a user's notification badge: decided requests the user has not
// seen plus requests waiting on the user's decision.
type Count struct {
	Requester int `json:"requester"`
	Manager   int `json:"manager"`
	Total     int `json:"total"`
}

// Decision is the state written by a compare-and-set transition.
type Decision struct {
	Status            Status
	RejectionReason   *string
	SignatureType     *users.AssetKind
	SignaturePosition *placement.Placement
	At                time.Time
}
