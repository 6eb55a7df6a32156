// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	flag "github.com/spf13/pflag"

	"linolayout/internal/catalog"
	"linolayout/internal/config"
	"linolayout/internal/dashboard"
	"linolayout/internal/render"
)

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, configDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "check",
		Summary: "Build every layout with both renderers and report errors",
		Usage:   "Usage: linolayout check [catalog-path...]",
		Run: func(args []string) error {
			return runCheckCommand(app, configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "render",
		Summary: "Print the element tree of a layout",
		Usage:   "Usage: linolayout render <layout> [--renderer web|term] [--boxes | --json] [--catalog path]...",
		Run: func(args []string) error {
			return runRenderCommand(app, configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "List the layouts of the configured catalogs",
		Usage:   "Usage: linolayout list [--json] [--catalog path]...",
		Run: func(args []string) error {
			return runListCommand(app, configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "dashboard",
		Summary: "Print the dashboard as seen with the given roles",
		Usage:   "Usage: linolayout dashboard [--roles a,b] [--catalog path]...",
		Run: func(args []string) error {
			return runDashboardCommand(app, configDir, args)
		},
	})

	app.AddCommand(&Command{
		Name:             "serve",
		Summary:          "Serve the layout API and reload catalogs on change",
		Usage:            "Usage: linolayout serve",
		RequiresInstance: true,
		Run: func(args []string) error {
			return runServeCommand(app, configDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: linolayout version",
		Run: func(args []string) error {
			fmt.Fprintln(app.Stdout, version)
			return nil
		},
	})

	remoteGroup := app.AddGroup("remote", "Query a running linolayout server")
	RegisterRemoteCommands(remoteGroup, app, configDir)

	return app
}

// loadCatalog loads the catalog paths, or the configured ones when paths
// is empty.
func loadCatalog(ctx context.Context, configDir string, paths []string) (*catalog.Catalog, error) {
	if len(paths) == 0 {
		cfg, err := config.LoadFromDir(config.ResolveDir(configDir))
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		paths = cfg.ResolveCatalogs()
	}
	if len(paths) == 0 {
		return nil, errors.New("no catalogs configured; pass paths or set catalogs in config.yaml")
	}
	return catalog.Load(ctx, paths...)
}

func newFlagSet(app *App, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.Stderr)
	return fs
}

func runCheckCommand(app *App, configDir string, args []string) error {
	c, err := loadCatalog(context.Background(), configDir, args)
	if err != nil {
		return err
	}
	if err := c.Check(render.Web(), render.Term()); err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "ok: %d layouts in %d files\n", len(c.Names()), len(c.Files()))
	return nil
}

func runRenderCommand(app *App, configDir string, args []string) error {
	fs := newFlagSet(app, "render")
	rendererName := fs.String("renderer", "term", "renderer: web or term")
	asJSON := fs.Bool("json", false, "print the element tree as JSON")
	boxes := fs.Bool("boxes", false, "draw the layout as nested boxes")
	catalogs := fs.StringArray("catalog", nil, "catalog file or directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: linolayout render <layout>")
	}

	r, ok := render.ByName(*rendererName)
	if !ok {
		return fmt.Errorf("unknown renderer %q (want web or term)", *rendererName)
	}
	c, err := loadCatalog(context.Background(), configDir, *catalogs)
	if err != nil {
		return err
	}
	h, err := c.Build(fs.Arg(0), r)
	if err != nil {
		return err
	}

	switch {
	case *asJSON:
		enc := json.NewEncoder(app.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(h.Main())
	case *boxes:
		fmt.Fprintln(app.Stdout, render.Boxes(h, render.PlainBoxStyles()))
	default:
		fmt.Fprint(app.Stdout, render.Text(h))
	}
	return nil
}

func runListCommand(app *App, configDir string, args []string) error {
	fs := newFlagSet(app, "list")
	asJSON := fs.Bool("json", false, "print JSON")
	catalogs := fs.StringArray("catalog", nil, "catalog file or directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	c, err := loadCatalog(ctx, configDir, *catalogs)
	if err != nil {
		return err
	}

	type row struct {
		Name   string `json:"name"`
		Kind   string `json:"kind"`
		Source string `json:"source,omitempty"`
		Title  string `json:"title"`
	}
	var rows []row
	for _, name := range c.Names() {
		e, err := c.Lookup(name)
		if err != nil {
			return err
		}
		r := row{Name: name, Kind: e.Layout.Kind().Name, Title: e.Layout.Title(ctx)}
		if ds := e.Layout.DataSource(); ds != nil {
			r.Source = ds.Name()
		}
		rows = append(rows, r)
	}

	if *asJSON {
		return json.NewEncoder(app.Stdout).Encode(rows)
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("LAYOUT", "KIND", "SOURCE", "TITLE")
	for _, r := range rows {
		t.Row(r.Name, r.Kind, r.Source, r.Title)
	}
	fmt.Fprintln(app.Stdout, t.Render())
	return nil
}

func runDashboardCommand(app *App, configDir string, args []string) error {
	fs := newFlagSet(app, "dashboard")
	roles := fs.StringSlice("roles", nil, "roles of the viewer (default: roles from config.yaml)")
	catalogs := fs.StringArray("catalog", nil, "catalog file or directory (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !fs.Changed("roles") {
		cfg, err := config.LoadFromDir(config.ResolveDir(configDir))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		*roles = cfg.Roles
	}

	ctx := context.Background()
	c, err := loadCatalog(ctx, configDir, *catalogs)
	if err != nil {
		return err
	}
	reg, err := dashboard.FromCatalog(c, render.Term())
	if err != nil {
		return err
	}
	var sb strings.Builder
	err = reg.Render(ctx, &sb, *roles)
	fmt.Fprint(app.Stdout, sb.String())
	return err
}

// runServeCommand runs the server until SIGINT or SIGTERM.
func runServeCommand(app *App, configDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := OpenRuntime(ctx, configDir)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Fprintf(app.Stdout, "serving %d layouts on http://%s\n", len(rt.Store.Catalog().Names()), rt.Web.Addr())
	return rt.Run(ctx)
}
