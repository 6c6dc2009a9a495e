package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/audit"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/internal/users"
	"github.com/JaimeStill/courier/pkg/pagination"
	"github.com/JaimeStill/courier/pkg/storage"
)

// prefixSearchLimit caps SearchByPrefix results. Resolution only needs to
// distinguish one hit from many.
const prefixSearchLimit = 20

// maxParallelHydrate bounds concurrent attachment loads when listing.
const maxParallelHydrate = 8

// DefaultPreviewTTL is the lifetime of attachment preview URLs.
const DefaultPreviewTTL = 15 * time.Minute

// System defines the document archive operations. Barcode arguments are
// normalized before use, so callers may pass raw scanner input.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error)
	Create(ctx context.Context, actor uuid.UUID, cmd CreateCommand) (*Document, error)
	Get(ctx context.Context, barcode string) (*Document, error)
	ResolveByBarcode(ctx context.Context, input string) (*Document, error)
	SearchByPrefix(ctx context.Context, prefix string) ([]Document, error)
	Delete(ctx context.Context, actor uuid.UUID, barcode string) error

	Timeline(ctx context.Context, barcode string) ([]TimelineEntry, error)
	AppendTimeline(ctx context.Context, actor uuid.UUID, barcode string, cmd TimelineCommand) (*TimelineEntry, error)

	Attachments(ctx context.Context, barcode string) (*attachments.List, error)
	AddAttachment(ctx context.Context, barcode string, a attachments.Attachment) (*attachments.List, error)
	DeleteAttachment(ctx context.Context, barcode string, index int) (*attachments.List, error)
	PreviewURL(ctx context.Context, barcode string, index int) (*Preview, error)
	Stamp(ctx context.Context, actor uuid.UUID, barcode string, cmd StampCommand) (*attachments.List, error)
}

// Deps are the collaborators of the archive.
type Deps struct {
	Store       Store
	Attachments attachments.System
	Users       users.System
	Stamper     stamping.System
	Storage     storage.System
	Audit       audit.Emitter
	Logger      *slog.Logger
	Pagination  pagination.Config
	PreviewTTL  time.Duration
}

type archive struct {
	store      Store
	atts       attachments.System
	users      users.System
	stamper    stamping.System
	storage    storage.System
	audit      audit.Emitter
	logger     *slog.Logger
	pagination pagination.Config
	previewTTL time.Duration
}

// New creates the document archive.
func New(deps Deps) System {
	ttl := deps.PreviewTTL
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &archive{
		store:      deps.Store,
		atts:       deps.Attachments,
		users:      deps.Users,
		stamper:    deps.Stamper,
		storage:    deps.Storage,
		audit:      deps.Audit,
		logger:     deps.Logger.With("system", "documents"),
		pagination: deps.Pagination,
		previewTTL: ttl,
	}
}

func (a *archive) Handler() *Handler {
	return NewHandler(a, a.logger, a.pagination)
}

func (a *archive) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	result, err := a.store.List(ctx, page, filters)
	if err != nil {
		return nil, lookupError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelHydrate)
	for i := range result.Data {
		g.Go(func() error {
			_, err := a.hydrate(gctx, &result.Data[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *archive) Create(ctx context.Context, actor uuid.UUID, cmd CreateCommand) (*Document, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	if cmd.Priority == "" {
		cmd.Priority = PriorityNormal
	}

	now := time.Now().UTC()
	doc, err := a.store.Insert(ctx, Document{
		ID:           uuid.New(),
		Type:         cmd.Type,
		Subject:      cmd.Subject,
		Sender:       cmd.Sender,
		Receiver:     cmd.Receiver,
		Priority:     cmd.Priority,
		DocumentDate: cmd.DocumentDate,
		Notes:        cmd.Notes,
		CreatedBy:    actor.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	doc.withAttachments(attachments.NewList(nil))

	a.record(ctx, doc, audit.ActionCreate, actor, doc.Subject)
	a.logger.Info("document created", "barcode", doc.Barcode, "type", doc.Type)
	return doc, nil
}

func (a *archive) Get(ctx context.Context, barcode string) (*Document, error) {
	barcode = NormalizeBarcode(barcode)
	if barcode == "" {
		return nil, ErrNotFound
	}
	doc, err := a.find(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return a.hydrate(ctx, doc)
}

func (a *archive) ResolveByBarcode(ctx context.Context, input string) (*Document, error) {
	barcode := NormalizeBarcode(input)
	if barcode == "" {
		return nil, ErrNotFound
	}

	doc, err := a.find(ctx, barcode)
	if err == nil {
		return a.hydrate(ctx, doc)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hits, err := a.store.SearchPrefix(ctx, barcode, 2)
	if err != nil {
		return nil, lookupError(err)
	}
	if len(hits) != 1 {
		a.logger.Debug("barcode unresolved", "barcode", barcode, "candidates", len(hits))
		return nil, ErrNotFound
	}
	return a.hydrate(ctx, &hits[0])
}

func (a *archive) SearchByPrefix(ctx context.Context, prefix string) ([]Document, error) {
	prefix = NormalizeBarcode(prefix)
	if prefix == "" {
		return []Document{}, nil
	}
	hits, err := a.store.SearchPrefix(ctx, prefix, prefixSearchLimit)
	if err != nil {
		return nil, lookupError(err)
	}
	return hits, nil
}

// Delete removes the document's attachments and their blobs, then the
// document and its timeline.
func (a *archive) Delete(ctx context.Context, actor uuid.UUID, barcode string) error {
	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return err
	}

	if err := a.atts.DeleteAll(ctx, attachments.DocumentParent(doc.ID)); err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}
	if err := a.store.Delete(ctx, doc.ID); err != nil {
		return err
	}

	a.record(ctx, doc, audit.ActionDelete, actor, doc.Subject)
	a.logger.Info("document deleted", "barcode", doc.Barcode)
	return nil
}

func (a *archive) Timeline(ctx context.Context, barcode string) ([]TimelineEntry, error) {
	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return nil, err
	}
	entries, err := a.store.Timeline(ctx, doc.Barcode)
	if err != nil {
		return nil, lookupError(err)
	}
	return entries, nil
}

func (a *archive) AppendTimeline(
	ctx context.Context,
	actor uuid.UUID,
	barcode string,
	cmd TimelineCommand,
) (*TimelineEntry, error) {
	note := strings.TrimSpace(cmd.Note)
	if note == "" {
		return nil, ErrValidationFailed
	}

	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return nil, err
	}

	at := time.Now().UTC()
	if cmd.At != nil && !cmd.At.IsZero() {
		at = cmd.At.UTC()
	}

	entry := TimelineEntry{
		ID:        uuid.New(),
		Barcode:   doc.Barcode,
		Message:   note,
		Actor:     actor.String(),
		CreatedAt: at.Truncate(time.Millisecond),
	}
	if err := a.store.AppendTimeline(ctx, entry); err != nil {
		return nil, err
	}

	a.record(ctx, doc, audit.ActionTimeline, actor, note)
	return &entry, nil
}

func (a *archive) Attachments(ctx context.Context, barcode string) (*attachments.List, error) {
	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return nil, err
	}
	return a.atts.List(ctx, attachments.DocumentParent(doc.ID))
}

func (a *archive) AddAttachment(ctx context.Context, barcode string, att attachments.Attachment) (*attachments.List, error) {
	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return nil, err
	}
	return a.atts.Add(ctx, attachments.DocumentParent(doc.ID), att)
}

func (a *archive) DeleteAttachment(ctx context.Context, barcode string, index int) (*attachments.List, error) {
	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return nil, err
	}
	return a.atts.DeleteAt(ctx, attachments.DocumentParent(doc.ID), index)
}

// PreviewURL returns a time-limited URL for the attachment at index. URLs
// outside managed storage are returned unchanged with no expiry.
func (a *archive) PreviewURL(ctx context.Context, barcode string, index int) (*Preview, error) {
	target, _, err := a.attachmentAt(ctx, barcode, index)
	if err != nil {
		return nil, err
	}

	preview := &Preview{URL: target.URL, Name: target.Name, Type: target.Type}

	key, err := a.storage.Resolve(target.URL)
	if errors.Is(err, storage.ErrForeignURL) {
		return preview, nil
	}
	if err != nil {
		return nil, err
	}

	url, err := a.storage.PresignURL(ctx, key, a.previewTTL)
	if err != nil {
		return nil, err
	}
	preview.URL = url
	preview.ExpiresAt = time.Now().UTC().Add(a.previewTTL)
	return preview, nil
}

// Stamp composites the actor's signature or stamp onto a page of the
// attachment at cmd.Index and adds the result as a new attachment.
func (a *archive) Stamp(
	ctx context.Context,
	actor uuid.UUID,
	barcode string,
	cmd StampCommand,
) (*attachments.List, error) {
	kind, err := users.ParseAssetKind(string(cmd.Kind))
	if err != nil {
		return nil, err
	}
	if err := cmd.Position.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	target, doc, err := a.attachmentAt(ctx, barcode, cmd.Index)
	if err != nil {
		return nil, err
	}

	user, err := a.users.Find(ctx, actor)
	if err != nil {
		return nil, err
	}
	assetKey := user.AssetKey(kind)
	if assetKey == "" {
		return nil, ErrMissingAsset
	}

	result, err := a.stamper.Composite(ctx, stamping.Request{
		SourceURL: target.URL,
		AssetKey:  assetKey,
		Page:      cmd.Page,
		Position:  cmd.Position,
		Key:       fmt.Sprintf("documents/%s/stamped/%s.pdf", doc.Barcode, uuid.New()),
	})
	if err != nil {
		return nil, err
	}

	list, err := a.atts.Add(ctx, attachments.DocumentParent(doc.ID), attachments.Attachment{
		Name:    stampedName(target.Name),
		Size:    result.Object.Size,
		Type:    "application/pdf",
		URL:     result.Object.URL,
		Key:     result.Object.Key,
		Bucket:  result.Object.Bucket,
		Storage: result.Object.Storage,
		Hash:    result.Hash,
	})
	if err != nil {
		return nil, err
	}

	a.record(ctx, doc, audit.ActionStamp, actor, fmt.Sprintf(
		"%s %s page %d at %.1f,%.1f",
		kind, target.Name, result.Page, result.Applied.X, result.Applied.Y,
	))
	return list, nil
}

func (a *archive) find(ctx context.Context, barcode string) (*Document, error) {
	if barcode == "" {
		return nil, ErrNotFound
	}
	doc, err := a.store.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, lookupError(err)
	}
	return doc, nil
}

func (a *archive) hydrate(ctx context.Context, doc *Document) (*Document, error) {
	list, err := a.atts.List(ctx, attachments.DocumentParent(doc.ID))
	if err != nil {
		return nil, lookupError(err)
	}
	doc.withAttachments(list)
	return doc, nil
}

func (a *archive) attachmentAt(ctx context.Context, barcode string, index int) (attachments.Attachment, *Document, error) {
	doc, err := a.find(ctx, NormalizeBarcode(barcode))
	if err != nil {
		return attachments.Attachment{}, nil, err
	}
	list, err := a.atts.List(ctx, attachments.DocumentParent(doc.ID))
	if err != nil {
		return attachments.Attachment{}, nil, lookupError(err)
	}
	if index < 0 || index >= list.Count {
		return attachments.Attachment{}, nil, attachments.ErrInvalidIndex
	}
	return list.Attachments[index], doc, nil
}

func (a *archive) record(ctx context.Context, doc *Document, action audit.Action, actor uuid.UUID, detail string) {
	err := a.audit.Record(ctx, audit.Entry{
		Entity:   audit.EntityDocument,
		EntityID: doc.Barcode,
		Action:   action,
		Actor:    actor.String(),
		Detail:   detail,
	})
	if err != nil {
		a.logger.Warn("audit record failed", "barcode", doc.Barcode, "action", action, "error", err)
	}
}

// lookupError keeps ErrNotFound distinct and wraps every other backend
// failure as ErrLookupFailed with its original message.
func lookupError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrLookupFailed, err)
}

func stampedName(name string) string {
	base := strings.TrimSuffix(name, ".pdf")
	return base + "-stamped.pdf"
}
