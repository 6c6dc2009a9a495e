package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/internal/approvals"
	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/users"
)

// CreateApproval validates cmd locally and opens a request.
// Missing evidence or manager fails without a network call.
func (c *Client) CreateApproval(ctx context.Context, cmd approvals.CreateCommand) (*approvals.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var req approvals.Request
	if err := c.send(ctx, http.MethodPost, "/approvals", cmd, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// MyRequests lists the session user's requests. The server marks decided
// requests seen as part of the read.
func (c *Client) MyRequests(ctx context.Context) ([]approvals.Request, error) {
	var items []approvals.Request
	if err := c.get(ctx, "/approvals/my-requests", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Pending lists the requests awaiting the session user's decision.
func (c *Client) Pending(ctx context.Context) ([]approvals.Request, error) {
	var items []approvals.Request
	if err := c.get(ctx, "/approvals/pending", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// NotificationCount returns the session user's badge count.
func (c *Client) NotificationCount(ctx context.Context) (*approvals.Count, error) {
	var count approvals.Count
	if err := c.get(ctx, "/notifications/count", nil, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// Approve decides a request with the manager's signature or stamp at position.
func (c *Client) Approve(
	ctx context.Context,
	id uuid.UUID,
	kind users.AssetKind,
	position placement.Placement,
	page int,
) (*approvals.Request, error) {
	return c.decide(ctx, id, approvals.DecisionCommand{
		Action:            approvals.ActionApprove,
		SignatureType:     kind,
		SignaturePosition: &position,
		Page:              page,
	})
}

// Reject decides a request with reason.
func (c *Client) Reject(ctx context.Context, id uuid.UUID, reason string) (*approvals.Request, error) {
	return c.decide(ctx, id, approvals.DecisionCommand{
		Action: approvals.ActionReject,
		Reason: reason,
	})
}

// MarkSeen acknowledges a decision on one of the session user's requests.
func (c *Client) MarkSeen(ctx context.Context, id uuid.UUID) (*approvals.Request, error) {
	var req approvals.Request
	if err := c.send(ctx, http.MethodPost, "/approvals/"+id.String()+"/seen", nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) decide(ctx context.Context, id uuid.UUID, cmd approvals.DecisionCommand) (*approvals.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var req approvals.Request
	if err := c.send(ctx, http.MethodPut, "/approvals/"+id.String(), cmd, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
