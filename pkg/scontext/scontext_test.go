package scontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStop(t *testing.T) {
	parent := context.Background()
	sc := New(parent)

	assert.Equal(t, parent, sc.Context())
	assert.ErrorIs(t, sc.Stop(), ErrStopped)

	first, err := sc.Start()
	require.NoError(t, err)
	assert.Equal(t, first, sc.Context())
	assert.True(t, sc.Running())

	_, err = sc.Start()
	assert.ErrorIs(t, err, ErrRunning)

	require.NoError(t, sc.Stop())
	assert.Error(t, first.Err())
	assert.False(t, sc.Running())

	// restart gives a fresh context
	second, err := sc.Start()
	require.NoError(t, err)
	assert.NoError(t, second.Err())
	require.NoError(t, sc.Stop())
}

func TestParentStopped(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sc := New(parent)

	child, err := sc.Start()
	require.NoError(t, err)

	cancel()
	assert.Error(t, child.Err())

	require.NoError(t, sc.Stop())
	_, err = sc.Start()
	assert.ErrorIs(t, err, ErrParentStopped)
}
