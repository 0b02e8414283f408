package keyfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"dominicbreuker/securesock/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverUID = 1000

func fakeGuard(info Info, statErr error) (*Guard, *[]int) {
	var exits []int
	g := &Guard{
		Logger:   log.NewLoggerTo(io.Discard, false),
		Exit:     func(code int) { exits = append(exits, code) },
		ExitCode: 1,
		stat: func(string) (Info, error) {
			return info, statErr
		},
		euid: func() uint32 { return serverUID },
	}
	return g, &exits
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var pe *PolicyError
	require.True(t, errors.As(err, &pe), "expected *PolicyError, got %v", err)
	return pe.Reason
}

func TestValidate_Policy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		info       Info
		wantReason string
	}{
		{name: "own 0600", info: Info{Regular: true, UID: serverUID, Mode: 0o600}},
		{name: "own 0400", info: Info{Regular: true, UID: serverUID, Mode: 0o400}},
		{name: "own 0640", info: Info{Regular: true, UID: serverUID, Mode: 0o640}, wantReason: ReasonPermissions},
		{name: "own 0644", info: Info{Regular: true, UID: serverUID, Mode: 0o644}, wantReason: ReasonPermissions},
		{name: "own 0604", info: Info{Regular: true, UID: serverUID, Mode: 0o604}, wantReason: ReasonPermissions},
		{name: "root 0600", info: Info{Regular: true, UID: 0, Mode: 0o600}},
		{name: "root 0640", info: Info{Regular: true, UID: 0, Mode: 0o640}},
		{name: "root 0660", info: Info{Regular: true, UID: 0, Mode: 0o660}, wantReason: ReasonPermissions},
		{name: "root 0650", info: Info{Regular: true, UID: 0, Mode: 0o650}, wantReason: ReasonPermissions},
		{name: "root 0644", info: Info{Regular: true, UID: 0, Mode: 0o644}, wantReason: ReasonPermissions},
		{name: "other owner", info: Info{Regular: true, UID: 4242, Mode: 0o600}, wantReason: ReasonOwner},
		{name: "not regular", info: Info{Regular: false, UID: serverUID, Mode: 0o600}, wantReason: ReasonNotRegular},
		{name: "not regular wins over owner", info: Info{Regular: false, UID: 4242, Mode: 0o777}, wantReason: ReasonNotRegular},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g, _ := fakeGuard(tc.info, nil)
			err := g.Validate("/tmp/key.pem")
			if tc.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.wantReason, reasonOf(t, err))
		})
	}
}

func TestValidate_StatFailure(t *testing.T) {
	t.Parallel()

	g, _ := fakeGuard(Info{}, os.ErrNotExist)
	err := g.Validate("/missing/key.pem")
	assert.Equal(t, ReasonInaccessible, reasonOf(t, err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "/missing/key.pem")
}

func TestValidate_PermissionsDetail(t *testing.T) {
	t.Parallel()

	g, _ := fakeGuard(Info{Regular: true, UID: serverUID, Mode: 0o640}, nil)
	err := g.Validate("/tmp/key.pem")

	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Detail, "u=rw (0600)")
	assert.Contains(t, pe.Detail, "u=rw,g=r (0640)")
	assert.Contains(t, pe.Detail, "rw-r----- (0640)")
	assert.Equal(t, `private key file "/tmp/key.pem" has group or world access`, err.Error())
}

func TestValidate_SkipOwnership(t *testing.T) {
	t.Parallel()

	g, _ := fakeGuard(Info{Regular: true, UID: 4242, Mode: 0o777}, nil)
	g.skip = true
	assert.NoError(t, g.Validate("key.pem"))

	g, _ = fakeGuard(Info{Regular: false}, nil)
	g.skip = true
	assert.Equal(t, ReasonNotRegular, reasonOf(t, g.Validate("key.pem")))
}

func TestCheck_Strict(t *testing.T) {
	t.Parallel()

	g, exits := fakeGuard(Info{Regular: true, UID: serverUID, Mode: 0o644}, nil)
	assert.False(t, g.Check("key.pem", true))
	assert.Equal(t, []int{1}, *exits)
}

func TestCheck_NonStrict(t *testing.T) {
	t.Parallel()

	g, exits := fakeGuard(Info{Regular: true, UID: serverUID, Mode: 0o644}, nil)
	assert.False(t, g.Check("key.pem", false))
	assert.Empty(t, *exits)

	g, exits = fakeGuard(Info{Regular: true, UID: serverUID, Mode: 0o600}, nil)
	assert.True(t, g.Check("key.pem", true))
	assert.Empty(t, *exits)
}

func TestGuard_RealFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("ownership and permissions are not checked on windows")
	}
	t.Parallel()

	dir := t.TempDir()
	write := func(name string, mode os.FileMode) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("key"), 0o600))
		require.NoError(t, os.Chmod(p, mode))
		return p
	}

	g := NewGuard(nil, func(int) { t.Fatal("unexpected exit") }, 1)

	assert.NoError(t, g.Validate(write("ok.pem", 0o600)))
	assert.Equal(t, ReasonPermissions, reasonOf(t, g.Validate(write("open.pem", 0o644))))
	assert.Equal(t, ReasonPermissions, reasonOf(t, g.Validate(write("group.pem", 0o640))))
	assert.Equal(t, ReasonNotRegular, reasonOf(t, g.Validate(dir)))
	assert.Equal(t, ReasonInaccessible, reasonOf(t, g.Validate(filepath.Join(dir, "missing.pem"))))
}
