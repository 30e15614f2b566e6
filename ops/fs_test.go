package ops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsEmbeddedNULByte(t *testing.T) {
	f, err := Open(nil, "good\x00bad", 0, 0)
	require.Nil(t, f)
	require.Error(t, err)
}

func TestOpen_AcceptsCleanPath(t *testing.T) {
	f, err := Open(nil, "/tmp/clean-path", 0, 0)
	require.NoError(t, err)
	require.NotNil(t, f)
}
