package approvals

import (
	"encoding/json"

	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/users"
	"github.com/JaimeStill/courier/pkg/repository"
)

const columns = `id, approval_number, title, description, requester_id, manager_id,
	attachment_url, status, rejection_reason, signature_type, signature_position,
	signed_attachment_url, is_seen, created_at, updated_at, decided_at`

func scanRequest(s repository.Scanner) (Request, error) {
	var (
		r             Request
		signatureType *string
		position      []byte
	)
	err := s.Scan(
		&r.ID,
		&r.ApprovalNumber,
		&r.Title,
		&r.Description,
		&r.RequesterID,
		&r.ManagerID,
		&r.AttachmentURL,
		&r.Status,
		&r.RejectionReason,
		&signatureType,
		&position,
		&r.SignedAttachmentURL,
		&r.IsSeen,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.DecidedAt,
	)
	if err != nil {
		return r, err
	}

	if signatureType != nil {
		kind := users.AssetKind(*signatureType)
		r.SignatureType = &kind
	}
	if len(position) > 0 {
		var p placement.Placement
		if err := json.Unmarshal(position, &p); err != nil {
			return r, err
		}
		r.SignaturePosition = &p
	}
	return r, nil
}

func encodePosition(p *placement.Placement) (any, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
