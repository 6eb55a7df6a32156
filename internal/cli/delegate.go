// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"linolayout/internal/config"
	"linolayout/internal/instance"
)

// Delegate coordinates discovering a running linolayout server and
// delegating a CLI command to it via HTTP. It handles error classification
// (no instance vs other errors) and exit code logic.
type Delegate struct {
	// ConfigDir is the config directory for lock/port file discovery.
	ConfigDir string

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	ExitFunc func(int)

	// Stderr is where error messages are written. Defaults to os.Stderr.
	Stderr io.Writer

	// Timeout bounds discovery and the delegated call. Defaults to 10 seconds.
	Timeout time.Duration
}

func (d *Delegate) applyDefaults() {
	if d.ExitFunc == nil {
		d.ExitFunc = os.Exit
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Timeout == 0 {
		d.Timeout = 10 * time.Second
	}
}

// Run discovers the running server and invokes fn with a client for it.
//
// Exit codes:
// - 2: no running linolayout instance found
// - 1: any other error (connection, server error, etc.)
// - no exit: success
func (d *Delegate) Run(fn func(ctx context.Context, client *instance.Client) error) {
	d.applyDefaults()
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()

	client := d.discover(ctx)
	if client == nil {
		return
	}
	d.Fail(fn(ctx, client))
}

// Client discovers the running server for commands that manage their own
// context. It returns nil after calling ExitFunc when none is found.
func (d *Delegate) Client() *instance.Client {
	d.applyDefaults()
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()
	return d.discover(ctx)
}

// Fail reports a non-nil err and exits with code 1.
func (d *Delegate) Fail(err error) {
	if err == nil {
		return
	}
	d.applyDefaults()
	msg := err.Error()
	// "linolayout returned status 404: <message>"
	if strings.HasPrefix(msg, "linolayout returned status") {
		if _, rest, ok := strings.Cut(msg, ": "); ok {
			msg = rest
		}
	}
	fmt.Fprintf(d.Stderr, "error: %s\n", msg)
	d.ExitFunc(1)
}

func (d *Delegate) discover(ctx context.Context) *instance.Client {
	baseURL, err := instance.Discover(ctx, config.ResolveDir(d.ConfigDir))
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		if errors.Is(err, instance.ErrNotRunning) {
			d.ExitFunc(2)
		} else {
			d.ExitFunc(1)
		}
		return nil
	}
	return instance.NewClient(baseURL)
}

// PrintJSON writes data to w. When w is a terminal the JSON is indented
// for readability; otherwise the raw bytes are written.
func PrintJSON(w io.Writer, data []byte) error {
	if f, ok := w.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", "  "); err == nil {
				buf.WriteByte('\n')
				_, err := w.Write(buf.Bytes())
				return err
			}
		}
	}
	_, err := w.Write(data)
	return err
}
