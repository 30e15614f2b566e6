package reactor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestInitError_UnwrapsToCause(t *testing.T) {
	cause := errors.New("setup failed")
	err := &InitError{Entries: 128, Cause: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "128")
	require.Contains(t, err.Error(), "setup failed")
}

func TestPushError_UnwrapsToCause(t *testing.T) {
	err := &PushError{Cause: unix.EBUSY}

	require.ErrorIs(t, err, unix.EBUSY)
}

func TestOpError_UnwrapsToErrno(t *testing.T) {
	err := &OpError{Op: "openat", Errno: unix.ENOENT}

	require.ErrorIs(t, err, unix.ENOENT)
	require.NotErrorIs(t, err, unix.EBUSY)
	require.Contains(t, err.Error(), "openat")
}
