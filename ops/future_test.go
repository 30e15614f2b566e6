package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/tangledbytes/reika/reactor"
)

func TestToError_NonNegativeResultPassesThrough(t *testing.T) {
	n, err := toError("read", 17)
	require.NoError(t, err)
	require.Equal(t, int32(17), n)
}

func TestToError_NegativeResultBecomesOpError(t *testing.T) {
	n, err := toError("open", -int32(unix.ENOENT))
	require.Equal(t, int32(0), n)
	require.Error(t, err)

	var opErr *reactor.OpError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, "open", opErr.Op)
	require.True(t, errors.Is(err, unix.ENOENT))
}
