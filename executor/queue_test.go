package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunQueue_EnqueueDrainLIFO(t *testing.T) {
	var q runQueue
	a, b, c := &TaskHeader{}, &TaskHeader{}, &TaskHeader{}
	q.enqueue(a)
	q.enqueue(b)
	q.enqueue(c)

	var visited []*TaskHeader
	q.drain(func(h *TaskHeader) { visited = append(visited, h) })

	require.Equal(t, []*TaskHeader{c, b, a}, visited)
	require.Nil(t, q.head)
}

func TestRunQueue_DrainAllowsReenqueue(t *testing.T) {
	var q runQueue
	a := &TaskHeader{}
	b := &TaskHeader{}
	q.enqueue(a)

	rounds := 0
	q.drain(func(h *TaskHeader) {
		rounds++
		if h == a {
			q.enqueue(b)
		}
	})
	require.Equal(t, 1, rounds)
	require.Equal(t, b, q.head)

	rounds = 0
	q.drain(func(h *TaskHeader) { rounds++ })
	require.Equal(t, 1, rounds)
	require.Nil(t, q.head)
}

func TestRunQueue_DrainEmpty(t *testing.T) {
	var q runQueue
	called := false
	q.drain(func(h *TaskHeader) { called = true })
	require.False(t, called)
}

func TestFreeList_EnqueueDequeueLIFO(t *testing.T) {
	var f freeList
	a, b := &TaskHeader{}, &TaskHeader{}
	f.enqueue(a)
	f.enqueue(b)

	require.Same(t, b, f.dequeue())
	require.Same(t, a, f.dequeue())
	require.Nil(t, f.dequeue())
}
