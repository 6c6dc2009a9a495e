package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/courier/pkg/storage"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory("correspondence")

	obj, err := m.Upload(ctx, "uploads/a/letter.pdf", strings.NewReader("%PDF-1.7"), 8, "application/pdf")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if obj.URL != "memory://correspondence/uploads/a/letter.pdf" || obj.Storage != storage.ProviderMemory || obj.Size != 8 {
		t.Errorf("object = %+v", obj)
	}

	key, err := m.Resolve(obj.URL)
	if err != nil || key != obj.Key {
		t.Errorf("Resolve() = %q, %v", key, err)
	}

	blob, err := m.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(blob.Body)
	blob.Body.Close()
	if string(data) != "%PDF-1.7" || blob.ContentType != "application/pdf" {
		t.Errorf("blob = %q %q", data, blob.ContentType)
	}

	presigned, err := m.PresignURL(ctx, key, time.Minute)
	if err != nil || !strings.HasPrefix(presigned, obj.URL+"?expires=") {
		t.Errorf("PresignURL() = %q, %v", presigned, err)
	}

	if err := m.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestMemoryErrors(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory("correspondence")

	if _, err := m.Upload(ctx, "k", strings.NewReader("abc"), 5, "text/plain"); err == nil {
		t.Error("size mismatch accepted")
	}
	if _, err := m.Download(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() error = %v", err)
	}
	if _, err := m.PresignURL(ctx, "missing", time.Minute); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("PresignURL() error = %v", err)
	}
	if _, err := m.Resolve("https://elsewhere/x"); !errors.Is(err, storage.ErrForeignURL) {
		t.Errorf("Resolve() error = %v", err)
	}
	if _, err := m.Upload(ctx, "../escape", strings.NewReader(""), 0, ""); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("Upload() traversal error = %v", err)
	}
}
