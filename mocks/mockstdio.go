// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// MockStdio stands in for a terminal: tests type into stdin and inspect
// everything written to stdout.
type MockStdio struct {
	stdinReader *io.PipeReader
	stdinWriter *io.PipeWriter

	mu     sync.Mutex
	output bytes.Buffer
	closed bool
}

// NewMockStdio creates a mock stdio with an open stdin.
func NewMockStdio() *MockStdio {
	r, w := io.Pipe()
	return &MockStdio{stdinReader: r, stdinWriter: w}
}

// Type writes data to stdin.
func (m *MockStdio) Type(data string) error {
	_, err := m.stdinWriter.Write([]byte(data))
	return err
}

// EndInput closes stdin; readers see EOF once buffered input is consumed.
func (m *MockStdio) EndInput() {
	m.stdinWriter.Close()
}

// Read reads from stdin.
func (m *MockStdio) Read(p []byte) (int, error) {
	return m.stdinReader.Read(p)
}

// Write records p as stdout output.
func (m *MockStdio) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output.Write(p)
}

// Close interrupts pending stdin reads.
func (m *MockStdio) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.stdinReader.CloseWithError(io.EOF)
	return nil
}

// Closed reports whether Close was called.
func (m *MockStdio) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Output returns everything written so far.
func (m *MockStdio) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output.String()
}

// WaitForOutput polls stdout until it contains expected or timeout elapses.
func (m *MockStdio) WaitForOutput(expected string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		out := m.Output()
		if strings.Contains(out, expected) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for output %q, got: %q", expected, out)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
