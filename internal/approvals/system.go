package approvals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/audit"
	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/internal/users"
)

// System defines the approval workflow. Every operation validates its
// input before any store call.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, requester uuid.UUID, cmd CreateCommand) (*Request, error)
	Find(ctx context.Context, caller, id uuid.UUID) (*Request, error)
	Approve(ctx context.Context, manager, id uuid.UUID, kind users.AssetKind, position *placement.Placement, page int) (*Request, error)
	Reject(ctx context.Context, manager, id uuid.UUID, reason string) (*Request, error)
	Decide(ctx context.Context, manager, id uuid.UUID, cmd DecisionCommand) (*Request, error)
	MarkSeen(ctx context.Context, requester, id uuid.UUID) (*Request, error)
	MyRequests(ctx context.Context, requester uuid.UUID) ([]Request, error)
	Pending(ctx context.Context, manager uuid.UUID) ([]Request, error)
	NotificationCount(ctx context.Context, user uuid.UUID) (*Count, error)
	Resend(ctx context.Context, requester, id uuid.UUID, cmd ResendCommand) (*Request, error)
	AttachSigned(ctx context.Context, caller, id uuid.UUID, url string) (*Request, error)
}

// Deps are the collaborators of the workflow. Stamper may be nil, in which
// case approvals never produce a signed copy on their own.
type Deps struct {
	Store       Store
	Users       users.System
	Attachments attachments.System
	Stamper     stamping.System
	Audit       audit.Emitter
	Logger      *slog.Logger
}

type machine struct {
	store   Store
	users   users.System
	atts    attachments.System
	stamper stamping.System
	audit   audit.Emitter
	logger  *slog.Logger
}

// New creates the approval workflow.
func New(deps Deps) System {
	return &machine{
		store:   deps.Store,
		users:   deps.Users,
		atts:    deps.Attachments,
		stamper: deps.Stamper,
		audit:   deps.Audit,
		logger:  deps.Logger.With("system", "approvals"),
	}
}

func (m *machine) Handler() *Handler {
	return NewHandler(m, m.logger)
}

func (m *machine) Create(ctx context.Context, requester uuid.UUID, cmd CreateCommand) (*Request, error) {
	return m.open(ctx, requester, cmd, audit.ActionCreate, "")
}

func (m *machine) open(ctx context.Context, requester uuid.UUID, cmd CreateCommand, action audit.Action, detail string) (*Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	cmd = cmd.normalize()
	managerID := uuid.MustParse(cmd.ManagerID)

	manager, err := m.users.Find(ctx, managerID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown manager", ErrValidationFailed)
	}
	if err != nil {
		return nil, err
	}
	if !manager.IsManager() {
		return nil, fmt.Errorf("%w: %s may not receive approval requests", ErrValidationFailed, manager.Name)
	}

	now := time.Now().UTC()
	req, err := m.store.Insert(ctx, Request{
		ID:            uuid.New(),
		Title:         cmd.Title,
		Description:   cmd.Description,
		RequesterID:   requester,
		ManagerID:     managerID,
		AttachmentURL: cmd.AttachmentURL,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	name := cmd.AttachmentName
	if name == "" {
		name = path.Base(cmd.AttachmentURL)
	}
	if _, err := m.atts.Add(ctx, attachments.ApprovalParent(req.ID), attachments.Attachment{
		Name: name,
		URL:  cmd.AttachmentURL,
	}); err != nil {
		m.logger.Warn("evidence attachment not registered", "id", req.ID, "error", err)
	}

	if detail == "" {
		detail = req.Title
	}
	m.record(ctx, req, action, requester, "", StatusPending, detail)
	m.logger.Info("approval requested", "number", req.ApprovalNumber, "manager", managerID)
	return req, nil
}

func (m *machine) Find(ctx context.Context, caller, id uuid.UUID) (*Request, error) {
	req, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != req.RequesterID && caller != req.ManagerID {
		return nil, ErrForbidden
	}
	return req, nil
}

// Approve decides a pending request in the manager's favor. The manager
// must own an image of kind. When a compositor is configured, the image is
// composited onto the evidence after the decision commits; a failure there
// leaves the approval in place without a signed copy.
func (m *machine) Approve(
	ctx context.Context,
	manager, id uuid.UUID,
	kind users.AssetKind,
	position *placement.Placement,
	page int,
) (*Request, error) {
	if err := validateApproval(kind, position); err != nil {
		return nil, err
	}

	req, err := m.decidable(ctx, manager, id)
	if err != nil {
		return nil, err
	}

	user, err := m.users.Find(ctx, manager)
	if err != nil {
		return nil, err
	}
	assetKey := user.AssetKey(kind)
	if assetKey == "" {
		return nil, ErrMissingSignatureAsset
	}

	pos := *position
	decided, err := m.store.Decide(ctx, id, Decision{
		Status:            StatusApproved,
		SignatureType:     &kind,
		SignaturePosition: &pos,
		At:                time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	m.record(ctx, decided, audit.ActionApprove, manager, StatusPending, StatusApproved, string(kind))
	m.logger.Info("approval approved", "number", req.ApprovalNumber, "kind", kind)

	if signed := m.sign(ctx, decided, manager, assetKey, page); signed != nil {
		decided = signed
	}
	return decided, nil
}

func (m *machine) Reject(ctx context.Context, manager, id uuid.UUID, reason string) (*Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}

	req, err := m.decidable(ctx, manager, id)
	if err != nil {
		return nil, err
	}

	decided, err := m.store.Decide(ctx, id, Decision{
		Status:          StatusRejected,
		RejectionReason: &reason,
		At:              time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	m.record(ctx, decided, audit.ActionReject, manager, StatusPending, StatusRejected, reason)
	m.logger.Info("approval rejected", "number", req.ApprovalNumber)
	return decided, nil
}

func (m *machine) Decide(ctx context.Context, manager, id uuid.UUID, cmd DecisionCommand) (*Request, error) {
	switch strings.ToLower(strings.TrimSpace(cmd.Action)) {
	case ActionApprove:
		return m.Approve(ctx, manager, id, cmd.SignatureType, cmd.SignaturePosition, cmd.Page)
	case ActionReject:
		return m.Reject(ctx, manager, id, cmd.Reason)
	default:
		return nil, fmt.Errorf("%w: action must be approve or reject", ErrValidationFailed)
	}
}

// MarkSeen acknowledges the requester's copy of a decision. Pending and
// already-seen requests are returned unchanged.
func (m *machine) MarkSeen(ctx context.Context, requester, id uuid.UUID) (*Request, error) {
	req, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requester {
		return nil, ErrForbidden
	}

	changed, err := m.store.MarkSeen(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if changed {
		req.IsSeen = true
		m.record(ctx, req, audit.ActionSeen, requester, "", "", "")
	}
	return req, nil
}

// MyRequests lists the requester's requests newest first and acknowledges
// every decided one the requester had not seen yet. A request that cannot be
// marked is returned unseen and retried on the next load.
func (m *machine) MyRequests(ctx context.Context, requester uuid.UUID) ([]Request, error) {
	items, err := m.store.ListByRequester(ctx, requester)
	if err != nil {
		return nil, err
	}

	for i := range items {
		r := &items[i]
		if r.Status == StatusPending || r.IsSeen {
			continue
		}
		changed, err := m.store.MarkSeen(ctx, r.ID, requester)
		if err != nil {
			m.logger.Warn("mark seen failed", "number", r.ApprovalNumber, "error", err)
			continue
		}
		r.IsSeen = true
		if changed {
			m.record(ctx, r, audit.ActionSeen, requester, "", "", "")
		}
	}
	return items, nil
}

func (m *machine) Pending(ctx context.Context, manager uuid.UUID) ([]Request, error) {
	return m.store.ListPending(ctx, manager)
}

func (m *machine) NotificationCount(ctx context.Context, user uuid.UUID) (*Count, error) {
	var count Count

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := m.store.CountUnseen(gctx, user)
		count.Requester = n
		return err
	})
	g.Go(func() error {
		n, err := m.store.CountPending(gctx, user)
		count.Manager = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	count.Total = count.Requester + count.Manager
	return &count, nil
}

// Resend opens a new pending request from a rejected one. The rejected
// record is left as it is.
func (m *machine) Resend(ctx context.Context, requester, id uuid.UUID, cmd ResendCommand) (*Request, error) {
	old, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if old.RequesterID != requester {
		return nil, ErrForbidden
	}
	if old.Status != StatusRejected {
		return nil, fmt.Errorf("%w: only rejected requests can be resent", ErrValidationFailed)
	}

	return m.open(ctx, requester, cmd.apply(*old), audit.ActionResend, "resend of "+old.ApprovalNumber)
}

// AttachSigned records the signed copy of approved evidence. Only the
// deciding manager may attach it.
func (m *machine) AttachSigned(ctx context.Context, caller, id uuid.UUID, url string) (*Request, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidationFailed)
	}

	req, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ManagerID != caller {
		return nil, ErrForbidden
	}
	if req.Status != StatusApproved {
		return nil, fmt.Errorf("%w: request is not approved", ErrValidationFailed)
	}

	signed, err := m.store.SetSigned(ctx, id, url)
	if err != nil {
		return nil, err
	}
	m.attachSigned(ctx, signed, caller, attachments.Attachment{Name: path.Base(url), URL: url})
	return signed, nil
}

// decidable loads a request and checks that manager may still decide it.
// The commit itself repeats the pending check atomically.
func (m *machine) decidable(ctx context.Context, manager, id uuid.UUID) (*Request, error) {
	req, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ManagerID != manager {
		return nil, ErrForbidden
	}
	if req.Status.Terminal() {
		return nil, ErrAlreadyDecided
	}
	return req, nil
}

func (m *machine) sign(ctx context.Context, req *Request, manager uuid.UUID, assetKey string, page int) *Request {
	if m.stamper == nil {
		return nil
	}

	result, err := m.stamper.Composite(ctx, stamping.Request{
		SourceURL: req.AttachmentURL,
		AssetKey:  assetKey,
		Page:      page,
		Position:  *req.SignaturePosition,
		Key:       fmt.Sprintf("approvals/%s/signed-%s.pdf", req.ID, uuid.New()),
	})
	if err != nil {
		m.logger.Warn("signed copy not produced", "number", req.ApprovalNumber, "error", err)
		return nil
	}

	signed, err := m.store.SetSigned(ctx, req.ID, result.Object.URL)
	if err != nil {
		m.logger.Warn("signed copy not recorded", "number", req.ApprovalNumber, "error", err)
		return nil
	}

	m.attachSigned(ctx, signed, manager, attachments.Attachment{
		Name:    req.ApprovalNumber + "-signed.pdf",
		Size:    result.Object.Size,
		Type:    "application/pdf",
		URL:     result.Object.URL,
		Key:     result.Object.Key,
		Bucket:  result.Object.Bucket,
		Storage: result.Object.Storage,
		Hash:    result.Hash,
	})
	return signed
}

func (m *machine) attachSigned(ctx context.Context, req *Request, actor uuid.UUID, a attachments.Attachment) {
	if _, err := m.atts.Add(ctx, attachments.ApprovalParent(req.ID), a); err != nil {
		m.logger.Warn("signed attachment not registered", "number", req.ApprovalNumber, "error", err)
	}
	m.record(ctx, req, audit.ActionAttachSigned, actor, "", "", a.URL)
}

func (m *machine) record(
	ctx context.Context,
	req *Request,
	action audit.Action,
	actor uuid.UUID,
	from, to Status,
	detail string,
) {
	deltas := audit.Deltas(action, req.RequesterID, req.ManagerID)
	err := m.audit.Record(ctx, audit.Entry{
		Entity:     audit.EntityApproval,
		EntityID:   req.ID.String(),
		Action:     action,
		Actor:      actor.String(),
		FromStatus: statusPtr(from),
		ToStatus:   statusPtr(to),
		Detail:     detail,
		Deltas:     deltas,
	})
	if err != nil {
		m.logger.Warn("audit record failed", "id", req.ID, "action", action, "error", err)
		return
	}
	if len(deltas) > 0 {
		m.logger.Debug(
			"notification badges changed",
			"number", req.ApprovalNumber,
			"action", action,
			"requester", audit.Net(deltas, req.RequesterID),
			"manager", audit.Net(deltas, req.ManagerID),
		)
	}
}

func statusPtr(s Status) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}
