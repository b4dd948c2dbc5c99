// Package cli wires config, storage and the engine together behind cobra
// commands. The bare command launches the TUI.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/config"
	"github.com/sadopc/liftlog/internal/tui"
)

type options struct {
	configPath string
	dbPath     string
	verbose    bool

	// clock replaces the configured zone clock in tests.
	clock calendar.Clock
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "liftlog",
		Short: "A terminal workout tracker with carry-over",
		Long: `liftlog shows a rotating workout plan one day at a time.

Mark exercises done, carry unfinished work to tomorrow or bump a single
exercise forward. Run without a subcommand to open the terminal UI.`,
		RunE:          func(cmd *cobra.Command, _ []string) error { return runTUI(cmd, o) },
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&o.dbPath, "db", "", "database path (overrides db_path)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		newTodayCmd(o),
		newServeCmd(o),
		newExportCmd(o),
		newRolloverCmd(o),
		newPlanCmd(o),
	)
	return root
}

// Execute runs the root command with process arguments.
func Execute() error {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// fileLogger keeps log output off the alt screen. If the log file cannot
// be opened logging is dropped.
func (o *options) fileLogger(path string) (*slog.Logger, func()) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			return o.logger(f), func() { f.Close() }
		}
	}
	return slog.New(slog.DiscardHandler), func() {}
}

func runTUI(cmd *cobra.Command, o *options) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	log, closeLog := o.fileLogger(cfg.LogFile)
	defer closeLog()

	a, err := o.open(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	app := tui.NewApp(tui.Deps{
		Engine: a.engine,
		DB:     a.db,
		Clock:  a.clock,
		Config: a.cfg,
		Logger: log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
