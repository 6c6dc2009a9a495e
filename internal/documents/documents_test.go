package documents_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/audit"
	"github.com/JaimeStill/courier/internal/documents"
	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/internal/users"
	"github.com/JaimeStill/courier/pkg/auth"
	"github.com/JaimeStill/courier/pkg/pagination"
	"github.com/JaimeStill/courier/pkg/routes"
	"github.com/JaimeStill/courier/pkg/storage"
)

var pageConfig = pagination.Config{DefaultPageSize: 25, MaxPageSize: 200}

type mockStamper struct {
	composite func(ctx context.Context, req stamping.Request) (*stamping.Result, error)
}

func (m *mockStamper) Composite(ctx context.Context, req stamping.Request) (*stamping.Result, error) {
	return m.composite(ctx, req)
}

type failingStore struct {
	*documents.MemoryStore
	err error
}

func (f failingStore) FindByBarcode(ctx context.Context, barcode string) (*documents.Document, error) {
	return nil, f.err
}

type fixture struct {
	sys     documents.System
	store   *documents.MemoryStore
	blobs   *storage.Memory
	dir     *users.Memory
	audit   *audit.Memory
	stamper *mockStamper
	actor   uuid.UUID
}

func newFixture(t *testing.T, wrap func(*documents.MemoryStore) documents.Store) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	blobs := storage.NewMemory("correspondence")

	f := &fixture{
		store:   documents.NewMemoryStore(pageConfig),
		blobs:   blobs,
		dir:     users.NewMemory(blobs, logger),
		audit:   audit.NewMemory(logger, pageConfig),
		stamper: &mockStamper{},
		actor:   uuid.New(),
	}

	var store documents.Store = f.store
	if wrap != nil {
		store = wrap(f.store)
	}

	f.sys = documents.New(documents.Deps{
		Store:       store,
		Attachments: attachments.New(attachments.NewMemoryStore(), blobs, logger),
		Users:       f.dir,
		Stamper:     f.stamper,
		Storage:     blobs,
		Audit:       f.audit,
		Logger:      logger,
		Pagination:  pageConfig,
	})
	return f
}

func (f *fixture) create(t *testing.T, typ documents.Type, subject string) *documents.Document {
	t.Helper()
	doc, err := f.sys.Create(context.Background(), f.actor, documents.CreateCommand{Type: typ, Subject: subject})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", subject, err)
	}
	return doc
}

func (f *fixture) attach(t *testing.T, barcode, name string) *attachments.List {
	t.Helper()
	ctx := context.Background()
	obj, err := f.blobs.Upload(ctx, "uploads/"+name, strings.NewReader(name), int64(len(name)), "application/pdf")
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}
	list, err := f.sys.AddAttachment(ctx, barcode, attachments.Attachment{
		Name: name,
		Size: obj.Size,
		Type: "application/pdf",
		URL:  obj.URL,
		Key:  obj.Key,
	})
	if err != nil {
		t.Fatalf("AddAttachment(%s) error = %v", name, err)
	}
	return list
}

func year() int { return time.Now().UTC().Year() }

func TestNormalizeBarcode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IN-2025-007", "IN-2025-007"},
		{" in-2025-007 ", "IN-2025-007"},
		{"\tout-2025-012\n", "OUT-2025-012"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := documents.NormalizeBarcode(tt.in); got != tt.want {
			t.Errorf("NormalizeBarcode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    documents.Priority
		wantErr bool
	}{
		{"", documents.PriorityNormal, false},
		{"normal", documents.PriorityNormal, false},
		{"urgent", documents.PriorityUrgent, false},
		{"very_urgent", documents.PriorityVeryUrgent, false},
		{"عادي", documents.PriorityNormal, false},
		{"عاجل", documents.PriorityUrgent, false},
		{"عاجل جداً", documents.PriorityVeryUrgent, false},
		{"critical", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := documents.ParsePriority(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !tt.wantErr && got.Label() == "" {
				t.Errorf("%q has no label", got)
			}
		})
	}
}

func TestCreateCommandUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		receiver string
		subject  string
		priority documents.Priority
		wantErr  bool
	}{
		{"canonical", `{"type":"incoming","subject":"Budget","receiver":"Finance"}`, "Finance", "Budget", documents.PriorityNormal, false},
		{"recipient", `{"type":"outgoing","subject":"Budget","recipient":"Finance"}`, "Finance", "Budget", documents.PriorityNormal, false},
		{"to and title", `{"type":"in","title":"Budget","to":" Finance ","priority":"عاجل"}`, "Finance", "Budget", documents.PriorityUrgent, false},
		{"receiver wins", `{"type":"incoming","subject":"x","receiver":"A","to":"B"}`, "A", "x", documents.PriorityNormal, false},
		{"arabic type", `{"type":"صادر","subject":"x"}`, "", "x", documents.PriorityNormal, false},
		{"bad type", `{"type":"sideways","subject":"x"}`, "", "", "", true},
		{"bad priority", `{"type":"incoming","subject":"x","priority":"asap"}`, "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd documents.CreateCommand
			err := json.Unmarshal([]byte(tt.body), &cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cmd.Receiver != tt.receiver || cmd.Subject != tt.subject || cmd.Priority != tt.priority {
				t.Errorf("cmd = %+v", cmd)
			}
		})
	}
}

func TestCreateAssignsSequentialBarcodes(t *testing.T) {
	f := newFixture(t, nil)
	y := year()

	first := f.create(t, documents.Incoming, "one")
	second := f.create(t, documents.Incoming, "two")
	out := f.create(t, documents.Outgoing, "three")

	want := []string{
		fmt.Sprintf("IN-%d-001", y),
		fmt.Sprintf("IN-%d-002", y),
		fmt.Sprintf("OUT-%d-001", y),
	}
	for i, d := range []*documents.Document{first, second, out} {
		if d.Barcode != want[i] {
			t.Errorf("barcode[%d] = %s, want %s", i, d.Barcode, want[i])
		}
		if d.AttachmentCount != 0 || d.Attachments == nil {
			t.Errorf("new document attachments = %v (%d)", d.Attachments, d.AttachmentCount)
		}
		if d.Priority != documents.PriorityNormal {
			t.Errorf("priority = %q, want normal", d.Priority)
		}
	}

	if _, err := f.sys.Create(context.Background(), f.actor, documents.CreateCommand{Type: documents.Incoming}); !errors.Is(err, documents.ErrValidationFailed) {
		t.Errorf("Create() without subject error = %v", err)
	}
}

func TestResolveByBarcode(t *testing.T) {
	f := newFixture(t, nil)
	y := year()
	f.create(t, documents.Incoming, "one")
	f.create(t, documents.Incoming, "two")
	f.create(t, documents.Outgoing, "three")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact", fmt.Sprintf("IN-%d-001", y), fmt.Sprintf("IN-%d-001", y)},
		{"scanner noise", fmt.Sprintf("  in-%d-001 ", y), fmt.Sprintf("IN-%d-001", y)},
		{"unique prefix", fmt.Sprintf("out-%d", y), fmt.Sprintf("OUT-%d-001", y)},
		{"ambiguous prefix", fmt.Sprintf("IN-%d", y), ""},
		{"unknown", "NOPE-1", ""},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := f.sys.ResolveByBarcode(context.Background(), tt.input)
			if tt.want == "" {
				if !errors.Is(err, documents.ErrNotFound) {
					t.Fatalf("ResolveByBarcode(%q) error = %v, want ErrNotFound", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveByBarcode(%q) error = %v", tt.input, err)
			}
			if doc.Barcode != tt.want {
				t.Errorf("ResolveByBarcode(%q) = %s, want %s", tt.input, doc.Barcode, tt.want)
			}
		})
	}
}

func TestResolveLookupFailed(t *testing.T) {
	backend := errors.New("connection refused")
	f := newFixture(t, func(m *documents.MemoryStore) documents.Store {
		return failingStore{MemoryStore: m, err: backend}
	})

	_, err := f.sys.ResolveByBarcode(context.Background(), "IN-2025-007")
	if !errors.Is(err, documents.ErrLookupFailed) {
		t.Fatalf("error = %v, want ErrLookupFailed", err)
	}
	if errors.Is(err, documents.ErrNotFound) {
		t.Error("backend failure reported as not found")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error %q lost the backend message", err)
	}
	if got := documents.MapHTTPStatus(err); got != http.StatusBadGateway {
		t.Errorf("MapHTTPStatus = %d, want 502", got)
	}
}

func TestTimeline(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, documents.Incoming, "letter")

	t1 := time.Date(2025, 3, 1, 9, 0, 0, 123456789, time.UTC)
	t2 := t1.Add(time.Hour)

	first, err := f.sys.AppendTimeline(ctx, f.actor, doc.Barcode, documents.TimelineCommand{Note: "received", At: &t1})
	if err != nil {
		t.Fatalf("AppendTimeline() error = %v", err)
	}
	if !first.CreatedAt.Equal(t1.Truncate(time.Millisecond)) {
		t.Errorf("CreatedAt = %v, want client time %v", first.CreatedAt, t1)
	}
	if _, err := f.sys.AppendTimeline(ctx, f.actor, strings.ToLower(doc.Barcode), documents.TimelineCommand{Note: "forwarded", At: &t2}); err != nil {
		t.Fatalf("AppendTimeline() error = %v", err)
	}

	entries, err := f.sys.Timeline(ctx, doc.Barcode)
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "forwarded" || entries[1].Message != "received" {
		t.Errorf("timeline = %+v, want newest first", entries)
	}

	if _, err := f.sys.AppendTimeline(ctx, f.actor, doc.Barcode, documents.TimelineCommand{Note: "  "}); !errors.Is(err, documents.ErrValidationFailed) {
		t.Errorf("empty note error = %v", err)
	}
	if _, err := f.sys.Timeline(ctx, "IN-1999-001"); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("unknown barcode error = %v", err)
	}
}

func TestMergeTimeline(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s1 := documents.TimelineEntry{ID: uuid.New(), Message: "received", CreatedAt: base}
	s2 := documents.TimelineEntry{ID: uuid.New(), Message: "forwarded", CreatedAt: base.Add(time.Minute)}

	confirmed := documents.TimelineEntry{Message: "forwarded", CreatedAt: base.Add(time.Minute).Add(300 * time.Microsecond), Pending: true}
	unconfirmed := documents.TimelineEntry{Message: "filed", CreatedAt: base.Add(2 * time.Minute), Pending: true}
	stale := documents.TimelineEntry{Message: "removed upstream", CreatedAt: base.Add(-time.Minute)}

	merged := documents.MergeTimeline(
		[]documents.TimelineEntry{unconfirmed, confirmed, stale},
		[]documents.TimelineEntry{s2, s1},
	)

	if len(merged) != 3 {
		t.Fatalf("merged = %+v, want 3 entries", merged)
	}
	if merged[0].Message != "filed" || !merged[0].Pending {
		t.Errorf("merged[0] = %+v, want unconfirmed pending entry", merged[0])
	}
	if merged[1].ID != s2.ID || merged[1].Pending {
		t.Errorf("merged[1] = %+v, want server copy of forwarded", merged[1])
	}
	if merged[2].ID != s1.ID {
		t.Errorf("merged[2] = %+v, want received", merged[2])
	}

	again := documents.MergeTimeline(merged, []documents.TimelineEntry{s2, s1})
	if len(again) != 3 {
		t.Errorf("merge is not idempotent: %+v", again)
	}
}

func TestAttachmentCount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, documents.Incoming, "letter")

	f.attach(t, doc.Barcode, "a.pdf")
	f.attach(t, doc.Barcode, "b.pdf")

	got, err := f.sys.Get(ctx, doc.Barcode)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AttachmentCount != 2 || len(got.Attachments) != 2 || got.Attachments[0].Name != "b.pdf" {
		t.Errorf("attachments = %+v (%d)", got.Attachments, got.AttachmentCount)
	}

	_, err = f.sys.DeleteAttachment(ctx, doc.Barcode, 5)
	if !errors.Is(err, attachments.ErrInvalidIndex) {
		t.Fatalf("DeleteAttachment(5) error = %v", err)
	}
	if documents.MapHTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("MapHTTPStatus(ErrInvalidIndex) = %d", documents.MapHTTPStatus(err))
	}

	list, err := f.sys.DeleteAttachment(ctx, doc.Barcode, 0)
	if err != nil {
		t.Fatalf("DeleteAttachment(0) error = %v", err)
	}
	if list.Count != 1 || list.Attachments[0].Name != "a.pdf" {
		t.Errorf("after delete = %+v", list)
	}

	page, err := f.sys.List(ctx, pagination.PageRequest{}, documents.Filters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 || page.Data[0].AttachmentCount != 1 {
		t.Errorf("List() = %+v", page)
	}
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, documents.Outgoing, "letter")
	keep := f.create(t, documents.Outgoing, "other")

	f.attach(t, doc.Barcode, "a.pdf")
	f.attach(t, doc.Barcode, "b.pdf")
	f.attach(t, keep.Barcode, "c.pdf")
	if _, err := f.sys.AppendTimeline(ctx, f.actor, doc.Barcode, documents.TimelineCommand{Note: "sent"}); err != nil {
		t.Fatalf("AppendTimeline() error = %v", err)
	}

	if err := f.sys.Delete(ctx, f.actor, strings.ToLower(doc.Barcode)); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if f.blobs.Len() != 1 {
		t.Errorf("blobs left = %d, want 1", f.blobs.Len())
	}
	if _, err := f.sys.Get(ctx, doc.Barcode); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	if _, err := f.sys.Timeline(ctx, doc.Barcode); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Timeline() after delete error = %v", err)
	}
	if list, _ := f.sys.Attachments(ctx, keep.Barcode); list.Count != 1 {
		t.Errorf("unrelated document lost attachments: %+v", list)
	}
	if err := f.sys.Delete(ctx, f.actor, doc.Barcode); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}

	var deleted bool
	for _, e := range f.audit.Entries() {
		if e.Action == audit.ActionDelete && e.EntityID == doc.Barcode {
			deleted = true
		}
	}
	if !deleted {
		t.Error("delete not audited")
	}
}

func TestPreviewURL(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.create(t, documents.Incoming, "letter")
	f.attach(t, doc.Barcode, "a.pdf")

	preview, err := f.sys.PreviewURL(ctx, doc.Barcode, 0)
	if err != nil {
		t.Fatalf("PreviewURL() error = %v", err)
	}
	if !strings.Contains(preview.URL, "?expires=") || preview.ExpiresAt.IsZero() {
		t.Errorf("managed preview = %+v", preview)
	}

	foreign := "https://elsewhere.example/scan.pdf"
	if _, err := f.sys.AddAttachment(ctx, doc.Barcode, attachments.Attachment{URL: foreign}); err != nil {
		t.Fatalf("AddAttachment() error = %v", err)
	}
	preview, err = f.sys.PreviewURL(ctx, doc.Barcode, 0)
	if err != nil {
		t.Fatalf("PreviewURL() error = %v", err)
	}
	if preview.URL != foreign || !preview.ExpiresAt.IsZero() {
		t.Errorf("foreign preview = %+v", preview)
	}

	if _, err := f.sys.PreviewURL(ctx, doc.Barcode, 9); !errors.Is(err, attachments.ErrInvalidIndex) {
		t.Errorf("PreviewURL(9) error = %v", err)
	}
}

func TestStamp(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	manager, err := f.dir.Create(ctx, users.CreateCommand{Name: "huda", Email: "huda@example.com", Role: "manager"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	doc := f.create(t, documents.Incoming, "letter")
	source := f.attach(t, doc.Barcode, "letter.pdf").Attachments[0]

	cmd := documents.StampCommand{
		Kind:     users.AssetSignature,
		Position: placement.Placement{X: 10, Y: 10, Width: 100, Height: 50, ContainerWidth: 600, ContainerHeight: 800},
	}

	if _, err := f.sys.Stamp(ctx, manager.ID, doc.Barcode, cmd); !errors.Is(err, documents.ErrMissingAsset) {
		t.Fatalf("Stamp() without asset error = %v", err)
	}

	if _, err := f.dir.SetAsset(ctx, manager.ID, users.AssetSignature, "assets/sig.png"); err != nil {
		t.Fatalf("SetAsset() error = %v", err)
	}

	var got stamping.Request
	f.stamper.composite = func(ctx context.Context, req stamping.Request) (*stamping.Result, error) {
		got = req
		return &stamping.Result{
			Object:  storage.Object{Key: req.Key, URL: "memory://correspondence/" + req.Key, Size: 42},
			Hash:    "blake3:feed",
			Page:    1,
			Applied: req.Position,
		}, nil
	}

	list, err := f.sys.Stamp(ctx, manager.ID, doc.Barcode, cmd)
	if err != nil {
		t.Fatalf("Stamp() error = %v", err)
	}
	if got.SourceURL != source.URL || got.AssetKey != "assets/sig.png" {
		t.Errorf("composite request = %+v", got)
	}
	if list.Count != 2 || list.Attachments[0].Name != "letter-stamped.pdf" || list.Attachments[0].Hash != "blake3:feed" {
		t.Errorf("stamped list = %+v", list)
	}

	var detail string
	for _, e := range f.audit.Entries() {
		if e.Action == audit.ActionStamp {
			detail = e.Detail
		}
	}
	if detail != "signature letter.pdf page 1 at 10.0,10.0" {
		t.Errorf("stamp audit detail = %q", detail)
	}

	bad := cmd
	bad.Position.X = 550
	if _, err := f.sys.Stamp(ctx, manager.ID, doc.Barcode, bad); !errors.Is(err, documents.ErrValidationFailed) {
		t.Errorf("out-of-bounds Stamp() error = %v", err)
	}
	bad = cmd
	bad.Kind = "seal"
	if _, err := f.sys.Stamp(ctx, manager.ID, doc.Barcode, bad); !errors.Is(err, users.ErrInvalidAsset) {
		t.Errorf("bad kind Stamp() error = %v", err)
	}
}

func serve(t *testing.T, h *documents.Handler, req *http.Request, session *auth.Session) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes(), h.BarcodeRoutes())
	if session != nil {
		req = req.WithContext(auth.WithSession(req.Context(), *session))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	f := newFixture(t, nil)
	h := f.sys.Handler()
	session := &auth.Session{UserID: f.actor.String(), Role: "clerk"}

	create := func() *http.Request {
		return httptest.NewRequest(http.MethodPost, "/documents",
			strings.NewReader(`{"type":"وارد","title":"Invoice","recipient":"Finance","priority":"عاجل جداً"}`))
	}

	if rec := serve(t, h, create(), nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("create without session = %d, want 401", rec.Code)
	}

	rec := serve(t, h, create(), session)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var doc documents.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Receiver != "Finance" || doc.Priority != documents.PriorityVeryUrgent || !strings.HasPrefix(doc.Barcode, "IN-") {
		t.Errorf("created = %+v", doc)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"resolve lowercase", http.MethodGet, "/barcodes/" + strings.ToLower(doc.Barcode), "", http.StatusOK},
		{"resolve unknown", http.MethodGet, "/barcodes/ZZZ-1", "", http.StatusNotFound},
		{"get", http.MethodGet, "/documents/" + doc.Barcode, "", http.StatusOK},
		{"append timeline", http.MethodPost, "/barcodes/" + doc.Barcode + "/timeline", `{"note":"received"}`, http.StatusCreated},
		{"empty note", http.MethodPost, "/barcodes/" + doc.Barcode + "/timeline", `{"note":""}`, http.StatusBadRequest},
		{"timeline", http.MethodGet, "/barcodes/" + doc.Barcode + "/timeline", "", http.StatusOK},
		{"bad index", http.MethodDelete, "/documents/" + doc.Barcode + "/attachments/first", "", http.StatusBadRequest},
		{"index out of range", http.MethodDelete, "/documents/" + doc.Barcode + "/attachments/0", "", http.StatusBadRequest},
		{"list", http.MethodGet, "/documents?type=incoming", "", http.StatusOK},
		{"search", http.MethodPost, "/documents/search", `{"page":1,"barcode":"IN-"}`, http.StatusOK},
		{"bad create", http.MethodPost, "/documents", `{"type":"sideways"}`, http.StatusBadRequest},
		{"delete", http.MethodDelete, "/documents/" + doc.Barcode, "", http.StatusNoContent},
		{"get deleted", http.MethodGet, "/documents/" + doc.Barcode, "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rec := serve(t, h, httptest.NewRequest(tt.method, tt.path, body), session)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
