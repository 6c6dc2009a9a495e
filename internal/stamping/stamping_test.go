package stamping_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/pkg/storage"
)

func newCompositor(t *testing.T) (stamping.System, *storage.Memory) {
	t.Helper()
	blobs := storage.NewMemory("correspondence")
	return stamping.New(blobs, slog.New(slog.NewTextHandler(io.Discard, nil))), blobs
}

func put(t *testing.T, blobs *storage.Memory, key, data string) string {
	t.Helper()
	obj, err := blobs.Upload(context.Background(), key, strings.NewReader(data), int64(len(data)), "")
	if err != nil {
		t.Fatalf("upload %s: %v", key, err)
	}
	return obj.URL
}

func TestDescription(t *testing.T) {
	p := placement.Placement{X: 50, Y: 50, Width: 120, Height: 120, ContainerWidth: 600, ContainerHeight: 800}
	rect := p.Project(600, 800)

	got := stamping.Description(rect, 600)
	want := "pos:bl, off:50.00 630.00, scale:0.2000 rel, rot:0, op:1"
	if got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}

func TestArrange(t *testing.T) {
	p := placement.Placement{X: 100, Y: 37, Width: 120, Height: 120, ContainerWidth: 663, ContainerHeight: 900}

	layout := stamping.Arrange(p, 595, 842)

	want := p.Project(595, 842)
	if math.Abs(layout.Rect.X-want.X) > 0.005 || math.Abs(layout.Rect.Y-want.Y) > 0.005 {
		t.Errorf("Rect = %+v, want about %+v", layout.Rect, want)
	}

	a := layout.Applied
	if a.ContainerWidth != p.ContainerWidth || a.ContainerHeight != p.ContainerHeight {
		t.Errorf("Applied container = %vx%v", a.ContainerWidth, a.ContainerHeight)
	}
	if math.Abs(a.X-p.X) > 0.01 || math.Abs(a.Y-p.Y) > 0.01 {
		t.Errorf("Applied = %+v, want close to %+v", a, p)
	}
	if math.Abs(a.Width-p.Width) > 1e-9 || math.Abs(a.Height-p.Height) > 1e-9 {
		t.Errorf("Applied size = %vx%v, want %vx%v", a.Width, a.Height, p.Width, p.Height)
	}
}

func TestCompositeRejectsBeforeReading(t *testing.T) {
	c, blobs := newCompositor(t)
	src := put(t, blobs, "uploads/letter.pdf", "not really a pdf")
	good := placement.Center(600, 800, 120)

	tests := []struct {
		name string
		req  stamping.Request
		want error
	}{
		{
			name: "out of bounds placement",
			req:  stamping.Request{SourceURL: src, AssetKey: "a", Key: "out", Position: placement.Placement{X: 590, Width: 120, Height: 120, ContainerWidth: 600, ContainerHeight: 800}},
			want: stamping.ErrInvalidRequest,
		},
		{
			name: "missing destination",
			req:  stamping.Request{SourceURL: src, AssetKey: "a", Position: good},
			want: stamping.ErrInvalidRequest,
		},
		{
			name: "foreign source",
			req:  stamping.Request{SourceURL: "https://elsewhere/x.pdf", AssetKey: "a", Key: "out", Position: good},
			want: stamping.ErrInvalidRequest,
		},
		{
			name: "missing asset",
			req:  stamping.Request{SourceURL: src, AssetKey: "assets/none.png", Key: "out", Position: good},
			want: stamping.ErrMissingBlob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Composite(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Composite() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompositeRejectsNonPDF(t *testing.T) {
	c, blobs := newCompositor(t)
	src := put(t, blobs, "uploads/letter.pdf", "plain text, no pdf header")
	put(t, blobs, "assets/u/stamp.png", "png")

	_, err := c.Composite(context.Background(), stamping.Request{
		SourceURL: src,
		AssetKey:  "assets/u/stamp.png",
		Key:       "stamped/letter.pdf",
		Position:  placement.Center(600, 800, 120),
	})
	if !errors.Is(err, stamping.ErrInvalidPDF) {
		t.Fatalf("Composite() error = %v, want ErrInvalidPDF", err)
	}
	if stamping.MapHTTPStatus(err) != http.StatusBadRequest {
		t.Errorf("MapHTTPStatus() = %d", stamping.MapHTTPStatus(err))
	}
	if ok, _ := blobs.Exists(context.Background(), "stamped/letter.pdf"); ok {
		t.Error("output written for failed composite")
	}
}
