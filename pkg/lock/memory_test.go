package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_AcquireAndRelease(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	release, err := locker.Acquire(ctx, "project-1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "project-1")
	assert.ErrorIs(t, err, ErrAlreadyLocked)

	release()

	release, err = locker.Acquire(ctx, "project-1")
	require.NoError(t, err)
	release()
}

func TestMemoryLocker_IndependentProjects(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	releaseA, err := locker.Acquire(ctx, "project-a")
	require.NoError(t, err)

	releaseB, err := locker.Acquire(ctx, "project-b")
	require.NoError(t, err)

	releaseA()
	releaseB()
}
