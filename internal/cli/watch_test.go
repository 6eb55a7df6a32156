// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/coder/websocket"
)

const liveLayoutJSON = `{"type":"layout","layout":{"name":"shop.Products.detail","title":"Product","version":3,` +
	`"main":{"name":"main","kind":"panel","width":30,"height":1,"children":[` +
	`{"name":"title","kind":"field","label":"Title","type":"char","width":20,"height":1},` +
	`{"name":"id","kind":"field","label":"id","type":"int","hidden":true}]}}}`

func liveServer(messages ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		for _, m := range messages {
			_ = conn.Write(r.Context(), websocket.MessageText, []byte(m))
		}
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

func TestWatchLayout_PrintsOutlines(t *testing.T) {
	dir := fakeInstance(t, liveServer(liveLayoutJSON, `{"type":"error","error":"unknown layout \"shop.Products.detail\""}`))
	client := (&Delegate{ConfigDir: dir}).Client()
	if client == nil {
		t.Fatal("Client() = nil")
	}

	var stdout, stderr bytes.Buffer
	err := WatchLayout(context.Background(), client, WatchConfig{
		Layout:    "shop.Products.detail",
		Renderer:  "term",
		Writer:    &stdout,
		ErrWriter: &stderr,
	})
	if err != nil {
		t.Fatalf("WatchLayout() error = %v", err)
	}

	want := "== shop.Products.detail v3: Product ==\n" +
		"- main (horizontal, 30x1)\n" +
		"  - title \"Title\" (char, 20x1)\n" +
		"  - id (int, hidden)\n"
	if stdout.String() != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout.String(), want)
	}
	if stderr.String() != "error: unknown layout \"shop.Products.detail\"\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestWatchLayout_BadMessage(t *testing.T) {
	dir := fakeInstance(t, liveServer(`not json`))
	client := (&Delegate{ConfigDir: dir}).Client()

	err := WatchLayout(context.Background(), client, WatchConfig{Writer: &bytes.Buffer{}, ErrWriter: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("WatchLayout() accepted a malformed message")
	}
}

func TestRemoteWatch_UnknownLayout(t *testing.T) {
	dir := fakeInstance(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown layout \"nope\""}`))
	})

	app := BuildApp("test", dir)
	_, stderr, code := captureApp(app)
	app.Execute([]string{"remote", "watch", "nope"})

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if stderr.String() != "error: unknown layout \"nope\"\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestDelegate_Client_NoInstance(t *testing.T) {
	exitCode := -1
	d := Delegate{ConfigDir: t.TempDir(), ExitFunc: func(c int) { exitCode = c }, Stderr: &bytes.Buffer{}}
	if client := d.Client(); client != nil || exitCode != 2 {
		t.Errorf("Client() = %v, exit %d; want nil and 2", client, exitCode)
	}
}
