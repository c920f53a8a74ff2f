// Package lock serializes decision processing per project. Exactly one
// decision per project may be in flight at a time; everything else about
// concurrency control lives in the persistence revision check.
package lock

import (
	"context"
	"errors"
)

// ErrAlreadyLocked is returned when a project lock is held elsewhere.
var ErrAlreadyLocked = errors.New("project is locked by another decision")

// ProjectLocker acquires a short-lived exclusive lock on a project. Acquire
// returns a release function on success and ErrAlreadyLocked when the lock is
// held.
type ProjectLocker interface {
	Acquire(ctx context.Context, projectID string) (release func(), err error)
}
