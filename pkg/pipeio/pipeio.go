// Package pipeio connects the client's standard streams to a server
// connection.
package pipeio

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type closeWriter interface {
	CloseWrite() error
}

// Pipe copies local to remote and remote to local until the remote side is
// done. When local reaches EOF and remote supports half-closing, only the
// write side of remote is shut down so that pending replies still arrive.
// Cancelling ctx stops both directions. Both ends are closed before Pipe
// returns.
func Pipe(ctx context.Context, local io.ReadWriteCloser, remote io.ReadWriteCloser, logfunc func(error)) {
	var o sync.Once
	done := make(chan struct{})

	closeBoth := func() {
		local.Close()
		remote.Close()
		close(done)
	}

	stop := context.AfterFunc(ctx, func() { o.Do(closeBoth) })
	defer stop()

	go func() {
		_, err := io.Copy(remote, local)
		if err != nil {
			logfunc(fmt.Errorf("io.Copy(remote, local): %s", err))
			o.Do(closeBoth)
			return
		}

		if cw, ok := remote.(closeWriter); ok {
			if err := cw.CloseWrite(); err == nil {
				return
			}
		}
		o.Do(closeBoth)
	}()

	go func() {
		_, err := io.Copy(local, remote)
		if err != nil {
			logfunc(fmt.Errorf("io.Copy(local, remote): %s", err))
		}
		o.Do(closeBoth)
	}()

	<-done
}
