package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/JaimeStill/courier/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=courierstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/courierstore;"

func azureConfig() *storage.Config {
	return &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "correspondence",
		ConnectionString: azuriteConnString,
	}
}

func s3Config() *storage.Config {
	return &storage.Config{
		Provider:      storage.ProviderS3,
		ContainerName: "correspondence",
		Endpoint:      "localhost:9000",
		AccessKey:     "minio",
		SecretKey:     "minio123",
	}
}

func TestNewReturnsSystem(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *storage.Config
		provider string
	}{
		{"azure", azureConfig(), storage.ProviderAzure},
		{"s3", s3Config(), storage.ProviderS3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := storage.New(tt.cfg, slog.Default())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if sys.Provider() != tt.provider {
				t.Errorf("Provider() = %s, want %s", sys.Provider(), tt.provider)
			}
		})
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := azureConfig()
	cfg.ConnectionString = "not-a-connection-string"

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := azureConfig()
	cfg.Provider = "ftp"

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"foreign url", storage.ErrForeignURL, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("operation failed: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "uploads/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "uploads/..hidden/file.pdf", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for _, cfg := range []*storage.Config{azureConfig(), s3Config()} {
		sys, err := storage.New(cfg, slog.Default())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		for _, tt := range tests {
			t.Run(cfg.Provider+"/"+tt.name, func(t *testing.T) {
				if _, err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), 0, "application/pdf"); !errors.Is(err, tt.wantErr) {
					t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
				}
				if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.PresignURL(ctx, tt.key, time.Minute); !errors.Is(err, tt.wantErr) {
					t.Errorf("PresignURL() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *storage.Config
		url     string
		want    string
		wantErr error
	}{
		{
			name: "azure blob url",
			cfg:  azureConfig(),
			url:  "http://127.0.0.1:10000/courierstore/correspondence/uploads/abc/letter.pdf",
			want: "uploads/abc/letter.pdf",
		},
		{
			name: "azure sas query stripped",
			cfg:  azureConfig(),
			url:  "http://127.0.0.1:10000/courierstore/correspondence/uploads/abc/letter.pdf?sig=x",
			want: "uploads/abc/letter.pdf",
		},
		{
			name: "s3 object url",
			cfg:  s3Config(),
			url:  "http://localhost:9000/correspondence/uploads/abc/letter.pdf",
			want: "uploads/abc/letter.pdf",
		},
		{
			name:    "foreign host",
			cfg:     s3Config(),
			url:     "https://example.com/file.pdf",
			wantErr: storage.ErrForeignURL,
		},
		{
			name:    "traversal after prefix",
			cfg:     s3Config(),
			url:     "http://localhost:9000/correspondence/../other/file.pdf",
			wantErr: storage.ErrInvalidKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := storage.New(tt.cfg, slog.Default())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			got, err := sys.Resolve(tt.url)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
