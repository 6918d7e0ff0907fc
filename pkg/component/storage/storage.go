// Package storage provides the common contract for backend clients used by
// usrsp-rag (MongoDB, Milvus, Qdrant) and a small registry that owns their
// lifecycle for the duration of one process.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClientExists is returned when a client name is registered twice.
var ErrClientExists = errors.New("storage client already registered")

// Client is the base interface every backend client implements.
type Client interface {
	// Name returns the backend type identifier, e.g. "mongodb".
	Name() string

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Manager keeps the clients opened by an application run and closes them
// in reverse registration order.
//
// Example usage:
//
//	mgr := storage.NewManager()
//	_ = mgr.Register("records", mongoClient)
//	defer mgr.CloseAll(context.Background())
type Manager struct {
	mu      sync.Mutex
	names   []string
	clients map[string]Client
}

// NewManager creates a new storage manager instance.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]Client),
	}
}

// Register registers a storage client with the given name.
func (m *Manager) Register(name string, client Client) error {
	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}
	if client == nil {
		return fmt.Errorf("client %q cannot be nil", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[name]; ok {
		return fmt.Errorf("%w: %s", ErrClientExists, name)
	}
	m.clients[name] = client
	m.names = append(m.names, name)
	return nil
}

// Get returns a registered client.
func (m *Manager) Get(name string) (Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[name]
	return c, ok
}

// Names returns the registered client names in registration order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// PingAll pings every client in registration order and stops at the first failure.
func (m *Manager) PingAll(ctx context.Context) error {
	for _, name := range m.Names() {
		c, _ := m.Get(name)
		if err := c.Ping(ctx); err != nil {
			return fmt.Errorf("%s (%s) is unreachable: %w", name, c.Name(), err)
		}
	}
	return nil
}

// CloseAll closes all registered clients in reverse order. It attempts to
// close every client and returns the joined errors.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	names := m.names
	clients := m.clients
	m.names = nil
	m.clients = make(map[string]Client)
	m.mu.Unlock()

	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		if err := clients[names[i]].Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close client '%s': %w", names[i], err))
		}
	}
	return errors.Join(errs...)
}
