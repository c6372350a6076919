package blobstore

import (
	"context"
	"io"
	"sync"
)

// Memory keeps objects in process memory.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *Memory) Upload(ctx context.Context, p string, r io.Reader, _ int64, contentType string) (Ref, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if e, ok := ctxFailure(ctx.Err()); ok {
		return "", e
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[clean] = b
	m.types[clean] = contentType
	m.mu.Unlock()
	return Ref(clean), nil
}

func (m *Memory) URLOf(_ context.Context, ref Ref) (string, error) {
	if IsURL(ref) {
		return string(ref), nil
	}
	return "mem://" + string(ref), nil
}

// Object returns a stored object and its content type.
func (m *Memory) Object(ref Ref) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[string(ref)]
	return b, m.types[string(ref)], ok
}

// Len is the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
