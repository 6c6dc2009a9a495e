package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/JaimeStill/courier/pkg/lifecycle"
)

// MemoryBaseURL prefixes every URL issued by the in-memory provider.
const MemoryBaseURL = "memory://"

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory is an in-memory System for local development and tests.
// It is safe for concurrent use.
type Memory struct {
	bucket  string
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemory creates an empty in-memory store for bucket.
func NewMemory(bucket string) *Memory {
	return &Memory{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
	}
}

func (m *Memory) Start(*lifecycle.Coordinator) error { return nil }

func (m *Memory) Provider() string { return ProviderMemory }

func (m *Memory) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()

	return &Object{
		Key:     key,
		URL:     m.url(key),
		Bucket:  m.bucket,
		Storage: ProviderMemory,
		Size:    int64(len(data)),
	}, nil
}

func (m *Memory) Download(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	return &Blob{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.data)),
	}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	ok, err := m.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}

	q := url.Values{"expires": {time.Now().Add(ttl).UTC().Format(time.RFC3339)}}
	return m.url(key) + "?" + q.Encode(), nil
}

func (m *Memory) Resolve(u string) (string, error) {
	return resolveKey(MemoryBaseURL+m.bucket, u)
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *Memory) url(key string) string {
	return MemoryBaseURL + m.bucket + "/" + key
}

var _ System = (*Memory)(nil)
