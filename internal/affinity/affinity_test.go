//go:build linux

package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPin_ValidCPU(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	require.NoError(t, Pin(0))
}
