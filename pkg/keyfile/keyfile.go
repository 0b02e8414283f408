// Package keyfile enforces the ownership and permission policy for the
// server's private key file.
//
// A key file is acceptable when it is a regular file owned either by the
// user the server runs as or by root. A file owned by the server user must
// not grant any group or world access (0600 or less); a root owned file
// may additionally be group readable (0640 or less), which lets a
// system-wide key be shared through a group.
package keyfile

import (
	"fmt"
	"os"
	"runtime"

	"dominicbreuker/securesock/pkg/format"
	"dominicbreuker/securesock/pkg/log"
)

const (
	// ReasonInaccessible means the file could not be stat'ed.
	ReasonInaccessible = "could not access private key file"
	// ReasonNotRegular means the path is not a regular file.
	ReasonNotRegular = "is not a regular file"
	// ReasonOwner means the file belongs to someone other than the server
	// user or root.
	ReasonOwner = "must be owned by the server user or root"
	// ReasonPermissions means the mode grants too much access.
	ReasonPermissions = "has group or world access"

	permissionsDetail = "File must have permissions u=rw (0600) or less if owned by the server user, or permissions u=rw,g=r (0640) or less if owned by root."
)

// Permission bits, independent of the platform's syscall package.
const (
	modeGroupWrite = 0o020
	modeGroupExec  = 0o010
	modeOtherAll   = 0o007
	modeGroupOther = 0o077
)

// Info is what the policy needs to know about a file.
type Info struct {
	Regular bool
	UID     uint32
	Mode    uint32 // permission bits only
}

// StatFunc inspects a path.
type StatFunc func(path string) (Info, error)

// PolicyError describes why a key file was rejected.
type PolicyError struct {
	Path   string
	Reason string
	Detail string
	Err    error
}

func (e *PolicyError) Error() string {
	if e.Reason == ReasonInaccessible {
		return fmt.Sprintf("%s \"%s\": %s", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("private key file \"%s\" %s", e.Path, e.Reason)
}

func (e *PolicyError) Unwrap() error { return e.Err }

// Guard checks key files and reports violations through its logger. In
// strict mode a violation terminates the process via Exit.
type Guard struct {
	Logger   *log.Logger
	Exit     func(code int)
	ExitCode int

	stat StatFunc
	euid func() uint32
	skip bool // ownership and permissions are not checked
}

// NewGuard returns a guard using the real file system.
func NewGuard(logger *log.Logger, exit func(code int), exitCode int) *Guard {
	if exit == nil {
		exit = os.Exit
	}
	return &Guard{
		Logger:   logger,
		Exit:     exit,
		ExitCode: exitCode,
		stat:     statFile,
		euid:     effectiveUID,
		skip:     runtime.GOOS == "windows",
	}
}

// Validate applies the policy to path and returns a *PolicyError on the
// first violation. Checks run in order: accessibility, file type,
// ownership, permissions.
func (g *Guard) Validate(path string) error {
	info, err := g.stat(path)
	if err != nil {
		return &PolicyError{Path: path, Reason: ReasonInaccessible, Err: err}
	}

	if !info.Regular {
		return &PolicyError{Path: path, Reason: ReasonNotRegular}
	}

	if g.skip {
		return nil
	}

	euid := g.euid()
	if info.UID != euid && info.UID != 0 {
		return &PolicyError{Path: path, Reason: ReasonOwner}
	}

	if tooPermissive(info, euid) {
		return &PolicyError{
			Path:   path,
			Reason: ReasonPermissions,
			Detail: permissionsDetail + " Current permissions are " + format.Perm(info.Mode) + ".",
		}
	}

	return nil
}

// Check validates path and returns whether it is acceptable. Violations
// are logged; with strict set they are fatal.
func (g *Guard) Check(path string, strict bool) bool {
	err := g.Validate(path)
	if err == nil {
		return true
	}

	g.Logger.ErrorMsg("%s", err)
	if pe, ok := err.(*PolicyError); ok && pe.Detail != "" {
		g.Logger.InfoMsg("%s", pe.Detail)
	}

	if strict {
		g.Exit(g.ExitCode)
	}
	return false
}

func tooPermissive(info Info, euid uint32) bool {
	if info.UID == euid && info.Mode&modeGroupOther != 0 {
		return true
	}
	if info.UID == 0 && info.Mode&(modeGroupWrite|modeGroupExec|modeOtherAll) != 0 {
		return true
	}
	return false
}
