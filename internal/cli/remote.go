// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"linolayout/internal/instance"
)

// RegisterRemoteCommands registers the commands that query a running
// server instead of loading catalogs themselves.
func RegisterRemoteCommands(group *Group, app *App, configDir string) {
	delegate := func() *Delegate {
		return &Delegate{ConfigDir: configDir, ExitFunc: app.Exit, Stderr: app.Stderr}
	}

	group.AddCommand(&Command{
		Name:             "list",
		Summary:          "Output JSON data about the served layouts",
		Usage:            "Usage: linolayout remote list",
		RequiresInstance: true,
		Run: func(args []string) error {
			delegate().Run(func(ctx context.Context, client *instance.Client) error {
				data, err := client.Layouts(ctx)
				if err != nil {
					return err
				}
				return PrintJSON(app.Stdout, data)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "show",
		Summary:          "Print the outline of a served layout",
		Usage:            "Usage: linolayout remote show <layout> [--json] [--renderer web|term]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs := newFlagSet(app, "show")
			asJSON := fs.Bool("json", false, "print the full JSON response")
			renderer := fs.String("renderer", "", "renderer used with --json: web or term")
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() != 1 {
				return fmt.Errorf("usage: linolayout remote show <layout>")
			}
			name := fs.Arg(0)

			delegate().Run(func(ctx context.Context, client *instance.Client) error {
				if *asJSON {
					data, err := client.Layout(ctx, name, *renderer)
					if err != nil {
						return err
					}
					return PrintJSON(app.Stdout, data)
				}
				data, err := client.Text(ctx, name)
				if err != nil {
					return err
				}
				_, err = app.Stdout.Write(data)
				return err
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "dashboard",
		Summary:          "Print the served dashboard",
		Usage:            "Usage: linolayout remote dashboard [roles,...]",
		RequiresInstance: true,
		Run: func(args []string) error {
			var roles []string
			if len(args) > 0 {
				roles = strings.Split(args[0], ",")
			}
			delegate().Run(func(ctx context.Context, client *instance.Client) error {
				data, err := client.Dashboard(ctx, roles)
				if err != nil {
					return err
				}
				_, err = app.Stdout.Write(data)
				return err
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "watch",
		Summary:          "Print a served layout again after every catalog reload",
		Usage:            "Usage: linolayout remote watch <layout> [--renderer web|term]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs := newFlagSet(app, "watch")
			renderer := fs.String("renderer", "term", "renderer: web or term")
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() != 1 {
				return fmt.Errorf("usage: linolayout remote watch <layout>")
			}

			d := delegate()
			client := d.Client()
			if client == nil {
				return nil // ExitFunc already called by Client()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d.Fail(WatchLayout(ctx, client, WatchConfig{
				Layout:    fs.Arg(0),
				Renderer:  *renderer,
				Writer:    app.Stdout,
				ErrWriter: app.Stderr,
			}))
			return nil
		},
	})
}
