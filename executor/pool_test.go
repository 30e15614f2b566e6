package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskPool_CapacityAccounting(t *testing.T) {
	p := NewTaskPool[*fakeFuture](2)
	require.Equal(t, 2, p.Cap())
	require.Equal(t, 0, p.Live())

	r1, err := p.Prepare(&fakeFuture{})
	require.NoError(t, err)
	require.Equal(t, 1, p.Live())

	r2, err := p.Prepare(&fakeFuture{})
	require.NoError(t, err)
	require.Equal(t, 2, p.Live())

	_, err = p.Prepare(&fakeFuture{})
	require.ErrorIs(t, err, ErrPoolExhausted)
	require.Equal(t, 2, p.Live())

	// Freeing a slot via its finalizeFn must make room for exactly one more
	// Prepare, not an unbounded number.
	r1.header().finalizeFn(r1.header().poolPtr, r1)
	require.Equal(t, 1, p.Live())

	_, err = p.Prepare(&fakeFuture{})
	require.NoError(t, err)
	require.Equal(t, 2, p.Live())

	_, err = p.Prepare(&fakeFuture{})
	require.ErrorIs(t, err, ErrPoolExhausted)

	_ = r2
}

func TestTaskPool_CapacityOne(t *testing.T) {
	p := NewTaskPool[*fakeFuture](1)
	ref, err := p.Prepare(&fakeFuture{})
	require.NoError(t, err)

	_, err = p.Prepare(&fakeFuture{})
	require.ErrorIs(t, err, ErrPoolExhausted)

	ref.header().finalizeFn(ref.header().poolPtr, ref)
	_, err = p.Prepare(&fakeFuture{})
	require.NoError(t, err)
}

func TestNewTaskPool_PanicsOnZeroCapacity(t *testing.T) {
	require.Panics(t, func() {
		NewTaskPool[*fakeFuture](0)
	})
}

func TestTaskPool_PrepareReusesMostRecentlyFreedSlot(t *testing.T) {
	p := NewTaskPool[*fakeFuture](3)
	r1, _ := p.Prepare(&fakeFuture{})
	r2, _ := p.Prepare(&fakeFuture{})
	h1, h2 := r1.header(), r2.header()

	h2.finalizeFn(h2.poolPtr, r2)
	r3, err := p.Prepare(&fakeFuture{})
	require.NoError(t, err)
	require.Same(t, h2, r3.header())

	_ = h1
}
