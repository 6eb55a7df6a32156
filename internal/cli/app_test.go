// pattern: Functional Core
package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// newTestApp returns an app writing to buffers and recording exit codes.
func newTestApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer, *int) {
	t.Helper()
	app := NewApp("1.0.0")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := -1
	app.Stdout = stdout
	app.Stderr = stderr
	app.Exit = func(c int) { code = c }
	return app, stdout, stderr, &code
}

func TestApp_PrintHelp_ShowsGroupedCommands(t *testing.T) {
	app := NewApp("1.0.0")
	app.AddCommand(&Command{Name: "check", Summary: "Validate catalogs"})
	app.AddGroup("remote", "Query a running server")

	buf := &bytes.Buffer{}
	app.PrintHelp(buf)

	output := buf.String()
	for _, want := range []string{"check", "Validate catalogs", "Command Groups (requires running instance)", "remote", "Launch interactive TUI"} {
		if !strings.Contains(output, want) {
			t.Errorf("help missing %q:\n%s", want, output)
		}
	}
}

func TestApp_Execute_NoArgs_ReturnsTrueForTUI(t *testing.T) {
	app := NewApp("1.0.0")
	if result := app.Execute(nil); !result {
		t.Errorf("Execute(nil) returned %v, want true", result)
	}
}

func TestApp_Execute_UngroupedCommand_Dispatches(t *testing.T) {
	app, _, _, code := newTestApp(t)
	var passed []string
	app.AddCommand(&Command{
		Name: "render",
		Run: func(args []string) error {
			passed = args
			return nil
		},
	})

	if result := app.Execute([]string{"render", "shop.Products.detail"}); result {
		t.Errorf("Execute with command returned %v, want false", result)
	}
	if len(passed) != 1 || passed[0] != "shop.Products.detail" {
		t.Errorf("args = %v, want [shop.Products.detail]", passed)
	}
	if *code != -1 {
		t.Errorf("exit code = %d, want no exit", *code)
	}
}

func TestApp_Execute_GroupCommand_Dispatches(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	group := app.AddGroup("remote", "Query a running server")

	var passed []string
	group.AddCommand(&Command{
		Name: "show",
		Run: func(args []string) error {
			passed = args
			return nil
		},
	})

	app.Execute([]string{"remote", "show", "a", "b"})
	if len(passed) != 2 || passed[0] != "a" || passed[1] != "b" {
		t.Errorf("args = %v, want [a b]", passed)
	}
}

func TestApp_Execute_CommandError_ExitsWithCode1(t *testing.T) {
	app, _, stderr, code := newTestApp(t)
	app.AddCommand(&Command{
		Name: "check",
		Run:  func(args []string) error { return errors.New("2 layouts failed") },
	})

	app.Execute([]string{"check"})
	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if got := stderr.String(); got != "error: 2 layouts failed\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestApp_Execute_Help(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"group help", []string{"remote", "help"}, "show"},
		{"group --help", []string{"remote", "--help"}, "show"},
		{"group -h", []string{"remote", "-h"}, "show"},
		{"group only", []string{"remote"}, "show"},
		{"command --help", []string{"remote", "show", "--help"}, "Usage: linolayout remote show <layout>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, stderr, code := newTestApp(t)
			runCalled := false
			app.AddGroup("remote", "Query a running server").AddCommand(&Command{
				Name:  "show",
				Usage: "Usage: linolayout remote show <layout>",
				Run: func(args []string) error {
					runCalled = true
					return nil
				},
			})

			if result := app.Execute(tt.args); result {
				t.Errorf("Execute(%v) returned true", tt.args)
			}
			if runCalled {
				t.Error("Run was called, want help output")
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.want)
			}
			if *code != -1 {
				t.Errorf("exit code = %d, want no exit", *code)
			}
		})
	}
}

func TestApp_Execute_Unknown_ExitsWithCode1(t *testing.T) {
	for _, args := range [][]string{{"nosuch"}, {"remote", "nosuch"}} {
		app, _, stderr, code := newTestApp(t)
		app.AddGroup("remote", "Query a running server")

		app.Execute(args)
		if *code != 1 {
			t.Errorf("Execute(%v) exit code = %d, want 1", args, *code)
		}
		if !strings.Contains(stderr.String(), "Usage: linolayout") {
			t.Errorf("Execute(%v) did not print help", args)
		}
	}
}
