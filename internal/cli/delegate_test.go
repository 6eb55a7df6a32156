// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linolayout/internal/instance"
)

// fakeInstance holds the lock of a temp dir and publishes the address of
// an httptest server answering with handler.
func fakeInstance(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	inst, err := instance.Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(inst.Release)
	if err := inst.Publish(server.Listener.Addr().String()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	return dir
}

func TestDelegate_Run_NoInstance_ExitsCode2(t *testing.T) {
	exitCode := -1
	stderr := &bytes.Buffer{}
	d := Delegate{
		ConfigDir: t.TempDir(),
		ExitFunc:  func(code int) { exitCode = code },
		Stderr:    stderr,
	}

	d.Run(func(ctx context.Context, client *instance.Client) error {
		return fmt.Errorf("should not be called")
	})

	if exitCode != 2 {
		t.Errorf("exit code = %d, want 2", exitCode)
	}
	if !strings.Contains(stderr.String(), "no running linolayout instance found") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestDelegate_Run_Success(t *testing.T) {
	dir := fakeInstance(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	exitCode := -1
	stderr := &bytes.Buffer{}
	called := false
	d := Delegate{
		ConfigDir: dir,
		ExitFunc:  func(code int) { exitCode = code },
		Stderr:    stderr,
	}
	d.Run(func(ctx context.Context, client *instance.Client) error {
		called = true
		_, err := client.Layouts(ctx)
		return err
	})

	if !called {
		t.Error("client function was not called")
	}
	if exitCode != -1 {
		t.Errorf("exit code = %d, want no exit call", exitCode)
	}
	if stderr.Len() > 0 {
		t.Errorf("stderr should be empty on success, got: %s", stderr.String())
	}
}

func TestDelegate_Run_ServerError_ExitsCode1(t *testing.T) {
	dir := fakeInstance(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown layout \"x\""}`))
	})

	exitCode := -1
	stderr := &bytes.Buffer{}
	d := Delegate{
		ConfigDir: dir,
		ExitFunc:  func(code int) { exitCode = code },
		Stderr:    stderr,
	}
	d.Run(func(ctx context.Context, client *instance.Client) error {
		_, err := client.Text(ctx, "x")
		return err
	})

	if exitCode != 1 {
		t.Errorf("exit code = %d, want 1", exitCode)
	}
	if got := stderr.String(); got != "error: unknown layout \"x\"\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestRemoteShow(t *testing.T) {
	dir := fakeInstance(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/layouts/shop.Products.detail/text":
			_, _ = w.Write([]byte("- main (horizontal)\n"))
		case "/api/layouts/shop.Products.detail":
			_, _ = w.Write([]byte(`{"name":"shop.Products.detail","renderer":"` + r.URL.Query().Get("renderer") + `"}`))
		default:
			http.NotFound(w, r)
		}
	})

	out, errOut, code := runApp(t, dir, "remote", "show", "shop.Products.detail")
	if code != 0 || out != "- main (horizontal)\n" {
		t.Errorf("remote show = %q (exit %d, stderr %q)", out, code, errOut)
	}

	out, _, _ = runApp(t, dir, "remote", "show", "--json", "--renderer", "term", "shop.Products.detail")
	if out != `{"name":"shop.Products.detail","renderer":"term"}` {
		t.Errorf("remote show --json = %q", out)
	}
}

func TestPrintJSON_NonTerminal_WritesRaw(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := PrintJSON(buf, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != `{"a":1}` {
		t.Errorf("got %q, want raw bytes", got)
	}
}

func TestPrintJSON_File_NotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := PrintJSON(f, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(f.Name())
	if string(data) != `{"a":1}` {
		t.Errorf("got %q, want raw bytes", data)
	}
}
