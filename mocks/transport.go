package mocks

import (
	"net"

	"dominicbreuker/securesock/pkg/transport"

	"github.com/stretchr/testify/mock"
)

// MockSocket is a testify mock of transport.Socket.
type MockSocket struct {
	mock.Mock
}

func (m *MockSocket) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSocket) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSocket) Close() error {
	return m.Called().Error(0)
}

func (m *MockSocket) Fd() int {
	return m.Called().Int(0)
}

func (m *MockSocket) RemoteAddr() net.Addr {
	addr, _ := m.Called().Get(0).(net.Addr)
	return addr
}

// MockSession is a testify mock of transport.Session.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSession) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}

func (m *MockSession) PeerName() string {
	return m.Called().String(0)
}

// MockProvider is a testify mock of transport.Provider. Open runs the wait
// func once per direction listed in HandshakeWaits before returning.
type MockProvider struct {
	mock.Mock

	HandshakeWaits []transport.Direction
}

func (m *MockProvider) Init(isServerStart bool) error {
	return m.Called(isServerStart).Error(0)
}

func (m *MockProvider) Destroy() {
	m.Called()
}

func (m *MockProvider) LoadedVerifyLocations() bool {
	return m.Called().Bool(0)
}

func (m *MockProvider) Open(sock transport.Socket, wait transport.WaitFunc) (transport.Session, error) {
	for _, dir := range m.HandshakeWaits {
		if err := wait(dir); err != nil {
			return nil, err
		}
	}

	args := m.Called(sock)
	session, _ := args.Get(0).(transport.Session)
	return session, args.Error(1)
}

// MockWaiter is a testify mock of a connection's wait coordinator.
type MockWaiter struct {
	mock.Mock
}

func (m *MockWaiter) Wait(dir transport.Direction) (bool, error) {
	args := m.Called(dir)
	return args.Bool(0), args.Error(1)
}

// MockInterrupts is a testify mock of an interrupt processor.
type MockInterrupts struct {
	mock.Mock
}

func (m *MockInterrupts) ProcessPending(blocking bool) error {
	return m.Called(blocking).Error(0)
}

var (
	_ transport.Socket   = (*MockSocket)(nil)
	_ transport.Session  = (*MockSession)(nil)
	_ transport.Provider = (*MockProvider)(nil)
)
