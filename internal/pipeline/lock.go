package pipeline

import (
	"fmt"

	"github.com/gofrs/flock"

	"github.com/MimeLyc/movie-sub-pipeline/internal/project"
)

// lockProject takes the advisory lock enforcing the single-writer discipline
// over a project's batch state. The lock is non-blocking: a second writer is
// a usage error, not something to wait out.
func lockProject(proj *project.Project) (func(), error) {
	lock := flock.New(proj.LockPath())

	locked, err := lock.TryLock()
	if err != nil {
		return nil, WrapError(err, ErrState, "cannot acquire project lock").
			WithContext("path", proj.LockPath())
	}
	if !locked {
		return nil, NewError(ErrState, fmt.Sprintf("project %s is locked by another process", proj.Name))
	}

	return func() {
		_ = lock.Unlock()
	}, nil
}
