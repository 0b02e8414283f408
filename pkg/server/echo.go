package server

import (
	"errors"
	"io"

	"dominicbreuker/securesock/pkg/log"
	"dominicbreuker/securesock/pkg/transport"
)

// Echo returns a handler that sends back everything the client sends
// until the client closes the connection. With captureFile set all
// traffic is appended to that file.
//
// Reads block. Replies are first attempted in the mode the connection was
// created with; if a non-blocking reply cannot be sent completely, the
// rest is sent in blocking mode.
func Echo(captureFile string, logger *log.Logger) Handler {
	return func(sess *Session) error {
		noblock := sess.Conn.NoBlock()

		var rw io.ReadWriter = sess.Conn
		if captureFile != "" {
			lc, err := log.NewLoggedConn(sess.Conn, captureFile)
			if err != nil {
				return err
			}
			defer lc.Close()
			rw = lc
		}

		buf := make([]byte, 8192)
		for {
			if err := sess.Interrupts.Check(); err != nil {
				return err
			}

			sess.Conn.SetNoBlock(false)
			n, err := rw.Read(buf)
			if n > 0 {
				if werr := reply(sess, rw, buf[:n], noblock, logger); werr != nil {
					return werr
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

func reply(sess *Session, w io.Writer, p []byte, noblock bool, logger *log.Logger) error {
	sess.Conn.SetNoBlock(noblock)
	defer sess.Conn.SetNoBlock(false)

	for len(p) > 0 {
		n, err := w.Write(p)
		p = p[n:]
		if err == nil {
			continue
		}
		if !transport.IsWouldBlock(err) {
			return err
		}
		logger.VerboseMsg("Session %s: reply would block, %d bytes left, waiting", sess.ID, len(p))
		sess.Conn.SetNoBlock(false)
	}
	return nil
}
