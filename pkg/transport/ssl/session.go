package ssl

import (
	"crypto/tls"

	"dominicbreuker/securesock/pkg/transport"
)

// session is an established TLS session on a non-blocking socket.
type session struct {
	tc *tls.Conn
	io *sockIO

	// accepted is the plaintext byte count of a Write whose records are
	// encrypted but not fully sent yet.
	accepted int
}

func (s *session) Read(p []byte) (int, error) {
	return s.tc.Read(p)
}

// Write encrypts p and sends the resulting records. If sending would
// block, the records stay queued and the call has to be repeated with the
// same buffer; the repeated call finishes sending and reports the bytes
// accepted the first time.
func (s *session) Write(p []byte) (int, error) {
	if s.accepted == 0 {
		n, err := s.tc.Write(p)
		if err != nil {
			return n, err
		}
		s.accepted = n
	}

	if err := s.io.flush(); err != nil {
		return 0, err
	}

	n := s.accepted
	s.accepted = 0
	return n, nil
}

func (s *session) Close() error {
	return s.tc.Close()
}

func (s *session) PeerName() string {
	state := s.tc.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return ""
	}
	return state.PeerCertificates[0].Subject.CommonName
}

var _ transport.Session = (*session)(nil)
