package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JaimeStill/courier/pkg/handlers"
	"github.com/JaimeStill/courier/pkg/openapi"
	"github.com/JaimeStill/courier/pkg/routes"
	"github.com/JaimeStill/courier/pkg/storage"
)

// Upload is the provenance returned for a stored file. Clients pass it back
// unchanged when registering an attachment.
type Upload struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Key     string `json:"key"`
	Bucket  string `json:"bucket"`
	Storage string `json:"storage"`
	Hash    string `json:"hash"`
	Pages   int    `json:"pages,omitempty"`
}

type uploadHandler struct {
	store         storage.System
	logger        *slog.Logger
	maxUploadSize int64
	conf          *model.Configuration
}

func newUploadHandler(store storage.System, logger *slog.Logger, maxUploadSize int64) *uploadHandler {
	return &uploadHandler{
		store:         store,
		logger:        logger.With("handler", "uploads"),
		maxUploadSize: maxUploadSize,
		conf:          model.NewDefaultConfiguration(),
	}
}

func (h *uploadHandler) routes() routes.Group {
	return routes.Group{
		Prefix:  "/uploads",
		Tags:    []string{"Uploads"},
		Schemas: uploadSchemas,
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "",
				Handler: h.upload,
				OpenAPI: &openapi.Operation{
					Summary: "Store a file and return its provenance",
					RequestBody: &openapi.RequestBody{
						Required: true,
						Content: map[string]*openapi.MediaType{
							"multipart/form-data": {
								Schema: &openapi.Schema{
									Type: "object",
									Properties: map[string]*openapi.Schema{
										"file": {Type: "string", Format: "binary"},
									},
									Required: []string{"file"},
								},
							},
						},
					},
					Responses: openapi.Responses(
						http.StatusCreated,
						openapi.ResponseJSON("Stored file", "Upload"),
						"BadRequest", "Unauthorized", "BadGateway",
					),
				},
			},
		},
	}
}

func (h *uploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid file: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	pages := h.pageCount(file, contentType)

	key := fmt.Sprintf("uploads/%s%s", uuid.New(), strings.ToLower(filepath.Ext(header.Filename)))
	digest := storage.NewDigest()

	obj, err := h.store.Upload(
		r.Context(),
		key,
		io.TeeReader(file, digest),
		header.Size,
		contentType,
	)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	h.logger.Info("file uploaded", "key", obj.Key, "size", obj.Size, "pages", pages)
	handlers.RespondJSON(w, http.StatusCreated, Upload{
		URL:     obj.URL,
		Name:    header.Filename,
		Size:    header.Size,
		Type:    contentType,
		Key:     obj.Key,
		Bucket:  obj.Bucket,
		Storage: obj.Storage,
		Hash:    digest.Sum(),
		Pages:   pages,
	})
}

// pageCount reports the page count of a PDF upload and rewinds the file.
// Unreadable PDFs are stored anyway and report zero pages.
func (h *uploadHandler) pageCount(file multipart.File, contentType string) int {
	if contentType != "application/pdf" {
		return 0
	}
	defer file.Seek(0, io.SeekStart)

	n, err := pdfapi.PageCount(file, h.conf)
	if err != nil {
		h.logger.Warn("pdf page count failed", "error", err)
		return 0
	}
	return n
}

var uploadSchemas = map[string]*openapi.Schema{
	"Upload": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"url":     {Type: "string"},
			"name":    {Type: "string", Example: "letter.pdf"},
			"size":    {Type: "integer", Format: "int64"},
			"type":    {Type: "string", Example: "application/pdf"},
			"key":     {Type: "string"},
			"bucket":  {Type: "string"},
			"storage": {Type: "string", Example: "azure"},
			"hash":    {Type: "string", Example: "blake3:…"},
			"pages":   {Type: "integer"},
		},
	},
}
