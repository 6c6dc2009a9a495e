package storage_test

import (
	"io"
	"strings"
	"testing"

	"github.com/JaimeStill/courier/pkg/storage"
)

func TestDigest(t *testing.T) {
	payload := "%PDF-1.7 incoming letter"

	d := storage.NewDigest()
	if _, err := io.Copy(io.Discard, io.TeeReader(strings.NewReader(payload), d)); err != nil {
		t.Fatalf("copy: %v", err)
	}

	streamed := d.Sum()
	if streamed != storage.DigestBytes([]byte(payload)) {
		t.Errorf("streamed digest %s differs from DigestBytes", streamed)
	}
	if !strings.HasPrefix(streamed, storage.DigestPrefix) || len(streamed) != len(storage.DigestPrefix)+64 {
		t.Errorf("digest format = %s", streamed)
	}
	if streamed == storage.DigestBytes([]byte(payload+" ")) {
		t.Error("different content produced the same digest")
	}
}
