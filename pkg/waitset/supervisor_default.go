//go:build !windows
// +build !windows

package waitset

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

type parentSupervisor struct {
	ppid int
}

// NewParentSupervisor watches the current parent process. Where the kernel
// supports it, ParentDeathSignal is requested on parent exit; the caller
// must turn that signal into a latch wake-up.
func NewParentSupervisor() (Supervisor, error) {
	ppid := unix.Getppid()
	if ppid == 1 {
		return nil, fmt.Errorf("no supervising parent process (already reparented to init)")
	}

	if err := watchParentDeath(); err != nil {
		return nil, fmt.Errorf("requesting parent death signal: %w", err)
	}

	// The parent may have exited before the request was in place.
	if unix.Getppid() != ppid {
		return nil, fmt.Errorf("supervising parent process %d exited during startup", ppid)
	}

	return &parentSupervisor{ppid: ppid}, nil
}

func (p *parentSupervisor) Fd() int { return -1 }

func (p *parentSupervisor) Lost() bool {
	return unix.Getppid() != p.ppid
}

type pipeSupervisor struct {
	fd int
}

// NewPipeSupervisor watches the read end of a pipe whose write end is held
// by the supervisor only. The pipe turns readable (EOF) once the supervisor
// exits.
func NewPipeSupervisor(fd int) Supervisor {
	unix.CloseOnExec(fd)
	return &pipeSupervisor{fd: fd}
}

// PipeSupervisorFromEnv creates a pipe supervisor from SupervisorFdEnv.
func PipeSupervisorFromEnv() (Supervisor, error) {
	v := os.Getenv(SupervisorFdEnv)
	if v == "" {
		return nil, fmt.Errorf("%s is not set", SupervisorFdEnv)
	}

	fd, err := strconv.Atoi(v)
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("%s=%q is not a file descriptor", SupervisorFdEnv, v)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("unix.Fstat(%d): %w", fd, err)
	}

	return NewPipeSupervisor(fd), nil
}

func (p *pipeSupervisor) Fd() int { return p.fd }

func (p *pipeSupervisor) Lost() bool {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	return err == nil && n > 0
}
