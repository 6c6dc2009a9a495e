// Package stamping composites signature and stamp images onto stored PDFs.
// Placements arrive in on-screen container pixels and are re-projected onto
// the target page's point dimensions before the image is applied.
package stamping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/JaimeStill/courier/internal/placement"
	"github.com/JaimeStill/courier/pkg/storage"
)

// Request describes one compositing job.
type Request struct {
	// SourceURL is the managed-storage URL of the PDF to stamp.
	SourceURL string
	// AssetKey is the storage key of the signature or stamp image.
	AssetKey string
	// Page is 1-based; zero selects the first page.
	Page     int
	Position placement.Placement
	// Key is where the stamped PDF is written.
	Key string
}

// Result is the stored, stamped PDF.
type Result struct {
	Object storage.Object
	// Hash is the BLAKE3 digest of the stamped PDF.
	Hash string
	Page int
	// Applied is where the image actually landed, in the container space of
	// the requested position.
	Applied placement.Placement
}

// Layout is a position resolved against a page.
type Layout struct {
	// Rect is the box handed to the watermark, in points, with its origin
	// rounded the way Description renders it.
	Rect placement.Rect
	// Applied is Rect mapped back into the requested container.
	Applied placement.Placement
}

// Arrange projects pos onto a pageWidth×pageHeight page and reports the
// rounded box the compositor draws.
func Arrange(pos placement.Placement, pageWidth, pageHeight float64) Layout {
	r := pos.Project(pageWidth, pageHeight)
	r.X = math.Round(r.X*100) / 100
	r.Y = math.Round(r.Y*100) / 100

	return Layout{
		Rect:    r,
		Applied: r.Unproject(pageWidth, pageHeight, pos.ContainerWidth, pos.ContainerHeight),
	}
}

// System composites images onto stored PDFs.
type System interface {
	Composite(ctx context.Context, req Request) (*Result, error)
}

type compositor struct {
	storage storage.System
	conf    *model.Configuration
	logger  *slog.Logger
}

// New creates a compositor that reads and writes through store.
func New(store storage.System, logger *slog.Logger) System {
	return &compositor{
		storage: store,
		conf:    model.NewDefaultConfiguration(),
		logger:  logger.With("system", "stamping"),
	}
}

func (c *compositor) Composite(ctx context.Context, req Request) (*Result, error) {
	if err := req.Position.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.AssetKey == "" || req.Key == "" {
		return nil, fmt.Errorf("%w: asset and destination keys are required", ErrInvalidRequest)
	}

	sourceKey, err := c.storage.Resolve(req.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	pdf, err := c.read(ctx, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	image, err := c.read(ctx, req.AssetKey)
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}

	dims, err := api.PageDims(bytes.NewReader(pdf), c.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 || page > len(dims) {
		return nil, fmt.Errorf("%w: page %d of %d", ErrInvalidPage, page, len(dims))
	}

	dim := dims[page-1]
	layout := Arrange(req.Position, dim.Width, dim.Height)

	wm, err := api.ImageWatermarkForReader(bytes.NewReader(image), Description(layout.Rect, dim.Width), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, []string{strconv.Itoa(page)}, wm, c.conf); err != nil {
		return nil, fmt.Errorf("composite page %d: %w", page, err)
	}

	obj, err := c.storage.Upload(ctx, req.Key, bytes.NewReader(out.Bytes()), int64(out.Len()), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("upload stamped pdf: %w", err)
	}

	c.logger.Info("pdf stamped", "source", sourceKey, "page", page, "key", obj.Key)
	return &Result{
		Object:  *obj,
		Hash:    storage.DigestBytes(out.Bytes()),
		Page:    page,
		Applied: layout.Applied,
	}, nil
}

func (c *compositor) read(ctx context.Context, key string) ([]byte, error) {
	blob, err := c.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBlob, key)
		}
		return nil, err
	}
	defer blob.Body.Close()
	return io.ReadAll(blob.Body)
}

// Description renders the watermark description that places an image at
// r on a page pageWidth points wide. Scale is relative to the page width and
// the offset is measured from the bottom-left corner.
func Description(r placement.Rect, pageWidth float64) string {
	return fmt.Sprintf(
		"pos:bl, off:%.2f %.2f, scale:%.4f rel, rot:0, op:1",
		r.X, r.Y, r.Width/pageWidth,
	)
}
