// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "linolayout.lock"
	portFileName = "linolayout.port"
)

var (
	ErrAlreadyRunning = errors.New("another linolayout instance is already running")
	ErrNotRunning     = errors.New("no running linolayout instance found (start `linolayout serve` first)")
)

// Instance is the single running server of a data directory.
type Instance struct {
	dir string
	fl  *flock.Flock
}

// Acquire takes the exclusive lock of dir, creating dir if needed.
func Acquire(dir string) (*Instance, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return &Instance{dir: dir, fl: fl}, nil
}

// Publish records the listener address for Discover.
func (i *Instance) Publish(addr string) error {
	tmp := filepath.Join(i.dir, portFileName+".tmp")
	if err := os.WriteFile(tmp, []byte(addr), 0600); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(i.dir, portFileName))
}

// Release removes the port file and unlocks.
func (i *Instance) Release() {
	if i == nil {
		return
	}
	_ = os.Remove(filepath.Join(i.dir, portFileName))
	_ = i.fl.Unlock()
}
