package log

import (
	"fmt"
	"io"
	"os"
)

// loggedConn copies everything read from and written to a connection into a
// capture file.
type loggedConn struct {
	conn    io.ReadWriteCloser
	logFile *os.File
}

func (lc *loggedConn) Read(b []byte) (int, error) {
	n, err := lc.conn.Read(b)
	if n > 0 {
		if _, werr := lc.logFile.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("capturing read: %w", werr)
		}
	}
	return n, err
}

func (lc *loggedConn) Write(b []byte) (int, error) {
	n, err := lc.conn.Write(b)
	if n > 0 {
		if _, werr := lc.logFile.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("capturing write: %w", werr)
		}
	}
	return n, err
}

// Close closes the connection and the capture file.
func (lc *loggedConn) Close() error {
	err := lc.conn.Close()
	if ferr := lc.logFile.Close(); err == nil {
		err = ferr
	}
	return err
}

// NewLoggedConn wraps conn so that all traffic is appended to the file at
// logFilePath. The capture file is created with mode 0600 since it may hold
// decrypted session data.
func NewLoggedConn(conn io.ReadWriteCloser, logFilePath string) (io.ReadWriteCloser, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening capture file %s: %w", logFilePath, err)
	}

	return &loggedConn{conn: conn, logFile: logFile}, nil
}
