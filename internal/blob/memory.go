package blob

import (
	"context"
	"slices"
	"sync"
)

// Object is a stored blob with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

// NewMemoryStore creates an empty store whose URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string]Object),
	}
}

// Put stores a copy of data.
func (m *MemoryStore) Put(_ context.Context, objectPath string, data []byte, contentType string) (string, error) {
	p, err := Clean(objectPath)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[p] = Object{Data: slices.Clone(data), ContentType: contentType}
	return PublicURL(m.baseURL, p), nil
}

// Delete removes an object.
func (m *MemoryStore) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, objectPath)
	return nil
}

// Get returns a stored object.
func (m *MemoryStore) Get(objectPath string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[objectPath]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{Data: slices.Clone(obj.Data), ContentType: obj.ContentType}, nil
}

// Paths returns every stored path in sorted order.
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.objects))
	for p := range m.objects {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
