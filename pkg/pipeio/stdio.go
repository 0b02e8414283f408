package pipeio

import (
	"io"
	"os"

	"github.com/muesli/cancelreader"
)

// Stdio is a ReadWriteCloser over an input and an output stream. Reads are
// cancelable when the platform supports it, so Close interrupts a pending
// read.
type Stdio struct {
	in         io.Reader
	cancelable cancelreader.CancelReader

	out io.Writer
}

// NewStdio returns a Stdio over os.Stdin and os.Stdout.
func NewStdio() *Stdio {
	return NewStdioFrom(os.Stdin, os.Stdout)
}

// NewStdioFrom returns a Stdio reading from in and writing to out.
func NewStdioFrom(in io.Reader, out io.Writer) *Stdio {
	s := &Stdio{in: in, out: out}

	cr, err := cancelreader.NewReader(in)
	if err != nil {
		return s
	}

	s.cancelable = cr
	return s
}

// Read reads from the input, using the cancelable reader if available.
func (s *Stdio) Read(p []byte) (n int, err error) {
	if s.cancelable != nil {
		n, err = s.cancelable.Read(p)
		if err == cancelreader.ErrCanceled {
			err = io.EOF
		}
		return n, err
	}

	return s.in.Read(p)
}

// Write writes to the output.
func (s *Stdio) Write(p []byte) (n int, err error) {
	return s.out.Write(p)
}

// Close cancels a pending read.
func (s *Stdio) Close() error {
	if s.cancelable != nil {
		s.cancelable.Cancel()
	}
	return nil
}
