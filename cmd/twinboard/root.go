package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbecker/twinboard/internal/config"
	"github.com/tbecker/twinboard/internal/tui"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "twinboard",
		Short: "Terminal cockpit for workforce what-if simulation",
		Long: `twinboard assigns workers from a shared pool onto the steps of a
business process digital twin, runs what-if simulations over the
assignment, and chats with the twin about the results.

State lives in a .twinboard/ folder in the directory you launch from.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Optional overrides; a missing .env is not an error.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	root.AddCommand(newStubdCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the twinboard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("twinboard %s\n", version)
		},
	})
	return root
}

func runTUI() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	if err := config.InitDir(cwd); err != nil {
		return fmt.Errorf("initialize %s: %w", config.AppDir, err)
	}
	cfg, err := config.New(cwd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // drag gestures need motion events
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
