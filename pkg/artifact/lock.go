package artifact

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const lockFile = ".pipeline.lock"

// ErrLocked means another run holds the artifact directory.
var ErrLocked = errors.New("another pipeline run holds the artifact directory")

// Lock takes an exclusive, non-blocking lock on dir and returns its release func.
func Lock(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create artifact directory")
	}
	fl := flock.New(filepath.Join(dir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquire artifact lock")
	}
	if !ok {
		return nil, errors.Wrapf(ErrLocked, "%s", dir)
	}
	return fl.Unlock, nil
}
