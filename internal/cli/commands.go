package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/liftlog/internal/calendar"
	"github.com/sadopc/liftlog/internal/export"
	"github.com/sadopc/liftlog/internal/server"
)

// withApp loads config, opens the engine with a stderr logger and runs fn.
func withApp(cmd *cobra.Command, o *options, fn func(a *app) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	a, err := o.open(cfg, o.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func newTodayCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "today [day]",
		Short: "Print the exercises for today or another day in the window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(a *app) error {
				w := a.engine.Window()
				k := w.TodayKey()
				if len(args) == 1 {
					var err error
					if k, err = calendar.ParseKey(w.Policy(), args[0]); err != nil {
						return err
					}
				}
				return printDay(cmd.OutOrStdout(), a, k)
			})
		},
	}
}

func printDay(out io.Writer, a *app, k calendar.DayKey) error {
	st := a.engine.Store()
	tasks, err := st.Tasks(k)
	if err != nil {
		return err
	}
	w := st.Window()

	title := w.Label(k)
	if idx, ok := w.PlanIndex(k); ok {
		title += " · " + st.Catalog().Template(idx).Label
	}
	if st.IsDayComplete(k) {
		title += " ✓"
	}
	fmt.Fprintln(out, title)

	for i, t := range tasks {
		mark := " "
		if t.Complete {
			mark = "x"
		}
		line := fmt.Sprintf("  %d. [%s] %s", i+1, mark, t.Name)
		if t.Skipped {
			line += " (skipped)"
		}
		if t.Carried(k) {
			line += " ↪ from " + w.Label(t.OriginalDay)
		}
		fmt.Fprintln(out, line)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(out, "  nothing scheduled")
	}
	return nil
}

func newServeCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the task table over HTTP.

Examples:
  liftlog serve
  liftlog serve --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, o, func(a *app) error {
				if addr == "" {
					addr = a.cfg.Listen
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Serving liftlog at http://%s\n", addr)
				return server.NewServer(a.engine, a.clock, a.log).Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the task table as CSV or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
			return withApp(cmd, o, func(a *app) error {
				st := a.engine.Store()
				rows := export.Rows(st.Window(), st.Catalog(), st.Snapshot())
				path := out
				if path == "" {
					path = fmt.Sprintf("liftlog-export-%s.%s", a.clock.Now().Format(calendar.DateLayout), format)
				}

				var err error
				if format == "csv" {
					err = export.ToCSV(rows, path)
				} else {
					err = export.ToJSON(rows, path)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(rows), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default liftlog-export-DATE.FORMAT)")
	return cmd
}

func newRolloverCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Advance the window to today",
		Long: `Advance the window to today's date.

Startup already does this; the command is for cron jobs and scripts that
want the stored table current without opening the UI.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, o, func(a *app) error {
				res, err := a.engine.Rollover(a.clock.Now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !res.Changed() {
					fmt.Fprintf(out, "%s is up to date\n", res.Today)
					return nil
				}
				fmt.Fprintf(out, "%s: added %d, evicted %d, reset %d\n",
					res.Today, len(res.Added), len(res.Evicted), len(res.Reset))
				return nil
			})
		},
	}
}

func newPlanCmd(o *options) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the workout rotation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			c, err := loadCatalog(cfg.PlanFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				data, err := c.Marshal()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			for i, d := range c.Days() {
				name := fmt.Sprintf("Day %d", i+1)
				if c.Len() == 7 {
					name = weekdays[i]
				}
				fmt.Fprintf(out, "%s: %s\n", name, d.Label)
				for _, t := range d.Tasks {
					fmt.Fprintf(out, "  - %s\n", t)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as a plan file")
	return cmd
}

var weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
