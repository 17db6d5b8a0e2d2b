package hid

import (
	"context"
	"errors"
	"sync"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// MockDevice is an in-memory Device for tests. Handler receives each
// outbound packet and returns the 32-byte response; requests are recorded
// for inspection.
type MockDevice struct {
	Handler func(req []byte) []byte

	mu       sync.Mutex
	closed   bool
	Requests [][]byte
}

func NewMockDevice(handler func(req []byte) []byte) *MockDevice {
	return &MockDevice{Handler: handler}
}

func (m *MockDevice) Exchange(_ context.Context, p []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("device closed")
	}
	req := make([]byte, len(p))
	copy(req, p)
	m.Requests = append(m.Requests, req)
	resp := make([]byte, packet.Size)
	if m.Handler != nil {
		copy(resp, m.Handler(req))
	}
	return resp, nil
}

func (m *MockDevice) Send(ctx context.Context, p []byte) error {
	_, err := m.Exchange(ctx, p)
	return err
}

func (m *MockDevice) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (m *MockDevice) Info() Info {
	return Info{Product: "mock", Serial: VialSerialMagic}
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
