package rlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoop_NeverPanics(t *testing.T) {
	l := Noop()
	require.NotPanics(t, func() {
		l.Debug().Str("k", "v").Log("message")
		l.Warning().Log("warning")
	})
}

func TestDefault_NeverPanics(t *testing.T) {
	l := Default()
	require.NotPanics(t, func() {
		l.Info().Int("n", 1).Log("message")
	})
}
