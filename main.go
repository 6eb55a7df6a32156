// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"linolayout/internal/catalog"
	"linolayout/internal/cli"
	"linolayout/internal/events"
	"linolayout/internal/tui"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/linolayout)")
	descriptorHelp := flag.Bool("descriptor-help", false, "print the layout descriptor guide")

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)

	if *descriptorHelp {
		app.PrintDescriptorHelp(os.Stdout)
		return
	}

	if app.Execute(flag.Args()) {
		runTUI(*configDir)
	}
}

// runTUI opens the runtime and browses its catalog until the user quits.
func runTUI(configDir string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := cli.OpenRuntime(ctx, configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	appLogger := rt.Logs.For("app")
	appLogger.Info("application starting", "version", version)

	model := tui.NewModel(tui.Options{
		Config: &rt.Config,
		Store:  rt.Store,
		Reload: rt.Reload,
		Logs:   rt.Logs,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	forwardCatalogChanges(rt.Store, p.Send)

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	webURL := fmt.Sprintf("http://%s", rt.Web.Addr())
	go func() {
		p.Send(events.WebListenURLMsg{URL: webURL})
	}()

	_, runErr := p.Run()
	cancel()
	if err := <-done; err != nil {
		appLogger.Error("runtime error", "error", err)
	}
	if runErr != nil {
		appLogger.Error("application exited with error", "error", runErr)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		rt.Close()
		os.Exit(1)
	}
}

// forwardCatalogChanges turns every store change into a TUI message.
func forwardCatalogChanges(store *catalog.Store, send func(tea.Msg)) {
	store.Subscribe(func(c catalog.Change) {
		send(events.CatalogReloadedMsg{Version: c.Version, Err: c.Err})
	})
}
