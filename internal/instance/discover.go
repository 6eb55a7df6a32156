// pattern: Imperative Shell
package instance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

// Discover returns the base URL of the server holding the lock of dir,
// e.g. "http://127.0.0.1:12345", after checking that it answers.
func Discover(ctx context.Context, dir string) (string, error) {
	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotRunning
		}
		return "", fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return "", ErrNotRunning
	}

	data, err := os.ReadFile(filepath.Join(dir, portFileName))
	if err != nil {
		return "", fmt.Errorf("linolayout is running but has not published its address: %w", err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("linolayout port file is empty")
	}
	baseURL := "http://" + addr

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if _, err := NewClient(baseURL).get(ctx, "/api/health"); err != nil {
		return "", fmt.Errorf("linolayout instance not responding: %w", err)
	}
	return baseURL, nil
}
