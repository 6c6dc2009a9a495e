package storage_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/courier/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "test-connection"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderAzure {
		t.Errorf("provider: got %s, want azure", cfg.Provider)
	}
	if cfg.ContainerName != "correspondence" {
		t.Errorf("container_name: got %s, want correspondence", cfg.ContainerName)
	}
	if cfg.PresignTTLDuration() != 15*time.Minute {
		t.Errorf("presign_ttl: got %v, want 15m", cfg.PresignTTLDuration())
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PROVIDER", "s3")
	t.Setenv("TEST_CONTAINER", "uploads")
	t.Setenv("TEST_ENDPOINT", "r2.example.com")
	t.Setenv("TEST_ACCESS", "ak")
	t.Setenv("TEST_SECRET", "sk")
	t.Setenv("TEST_SSL", "true")

	env := &storage.Env{
		Provider:      "TEST_PROVIDER",
		ContainerName: "TEST_CONTAINER",
		Endpoint:      "TEST_ENDPOINT",
		AccessKey:     "TEST_ACCESS",
		SecretKey:     "TEST_SECRET",
		UseSSL:        "TEST_SSL",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderS3 {
		t.Errorf("provider: got %s, want s3", cfg.Provider)
	}
	if cfg.ContainerName != "uploads" {
		t.Errorf("container_name: got %s, want uploads", cfg.ContainerName)
	}
	if cfg.Endpoint != "r2.example.com" {
		t.Errorf("endpoint: got %s", cfg.Endpoint)
	}
	if !cfg.UseSSL {
		t.Error("use_ssl: got false, want true")
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{
			name:    "azure without credentials",
			cfg:     storage.Config{ContainerName: "docs"},
			wantErr: "connection_string or service_url required",
		},
		{
			name: "azure with service url",
			cfg:  storage.Config{ServiceURL: "https://acct.blob.core.windows.net/"},
		},
		{
			name:    "s3 without endpoint",
			cfg:     storage.Config{Provider: storage.ProviderS3, AccessKey: "a", SecretKey: "b"},
			wantErr: "endpoint required",
		},
		{
			name:    "s3 without keys",
			cfg:     storage.Config{Provider: storage.ProviderS3, Endpoint: "localhost:9000"},
			wantErr: "access_key and secret_key required",
		},
		{
			name:    "unknown provider",
			cfg:     storage.Config{Provider: "ftp"},
			wantErr: "unknown provider",
		},
		{
			name:    "invalid presign ttl",
			cfg:     storage.Config{ConnectionString: "conn", PresignTTL: "soon"},
			wantErr: "invalid presign_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "correspondence",
		ConnectionString: "base-conn",
	}
	overlay := storage.Config{
		ContainerName: "archive",
		PresignTTL:    "5m",
	}

	base.Merge(&overlay)

	if base.ContainerName != "archive" {
		t.Errorf("container_name: got %s, want archive", base.ContainerName)
	}
	if base.ConnectionString != "base-conn" {
		t.Errorf("connection_string: got %s, want base-conn", base.ConnectionString)
	}
	if base.PresignTTL != "5m" {
		t.Errorf("presign_ttl: got %s, want 5m", base.PresignTTL)
	}
}
