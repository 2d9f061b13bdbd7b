package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"activitylog/internal/bootstrap"
	trackerdto "activitylog/internal/modules/tracker/dto"
	"activitylog/internal/platform/config"
	"activitylog/internal/platform/durfmt"
)

var version = "dev"

const (
	logFileName = "activitylog.log"
	dateLayout  = "2006-01-02"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "activitylog",
		Short:         "Track time spent per activity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding config.yaml and the database")

	root.AddCommand(newRunCmd(&dataDir))
	root.AddCommand(newServeCmd(&dataDir))
	root.AddCommand(newControlCmds(&dataDir)...)
	root.AddCommand(newTodayCmd(&dataDir))
	root.AddCommand(newSessionsCmd(&dataDir))
	root.AddCommand(newActivitiesCmd(&dataDir))
	root.AddCommand(newReportCmd(&dataDir))
	root.AddCommand(newPluginCmd(&dataDir))
	root.AddCommand(newVersionCmd())
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".activitylog"
	}
	return filepath.Join(home, ".activitylog")
}

func loadConfig(dataDir string) (config.Config, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, fmt.Errorf("create data dir: %w", err)
	}
	return config.Load(dataDir)
}

// withApp opens the app for one command and closes it afterwards.
func withApp(ctx context.Context, dataDir string, fn func(*bootstrap.App) error) (err error) {
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()
	return fn(app)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the terminal UI with the tracker, HTTP API and triggers",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			if cfg.Log.File == "" {
				cfg.Log.File = filepath.Join(cfg.DataDir, logFileName)
			}
			app, err := bootstrap.New(ctx, cfg)
			if err != nil {
				return err
			}
			return errors.Join(app.RunTUI(ctx), app.Close())
		},
	}
}

func newServeCmd(dataDir *string) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracker headless with the HTTP API and triggers",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.HTTP.Listen = listen
			}
			app, err := bootstrap.New(ctx, cfg)
			if err != nil {
				return err
			}
			return errors.Join(app.Serve(ctx), app.Close())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP API address, overrides http.listen")
	return cmd
}

// newControlCmds builds the write commands, which talk to a running instance.
func newControlCmds(dataDir *string) []*cobra.Command {
	var addr string
	remote := func() (trackerCLI, error) {
		cfg, err := loadConfig(*dataDir)
		if err != nil {
			return nil, err
		}
		target := addr
		if target == "" {
			target = cfg.HTTP.Listen
		}
		if target == "" {
			return nil, fmt.Errorf("no running instance to reach: set http.listen or pass --addr")
		}
		return bootstrap.Remote(target, cfg.HTTP.RequestTimeout)
	}
	control := func(use, short string, args cobra.PositionalArgs, op func(context.Context, trackerCLI, []string) (trackerdto.StateOutput, error)) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				h, err := remote()
				if err != nil {
					return err
				}
				st, err := op(cmd.Context(), h, args)
				if err != nil {
					return err
				}
				printState(cmd.OutOrStdout(), st)
				return nil
			},
		}
		cmd.Flags().StringVar(&addr, "addr", "", "address of the running instance, defaults to http.listen")
		return cmd
	}

	return []*cobra.Command{
		control("start <activity>", "Start tracking an activity", cobra.ExactArgs(1),
			func(ctx context.Context, h trackerCLI, args []string) (trackerdto.StateOutput, error) {
				return h.Start(ctx, args[0])
			}),
		control("switch <activity>", "Switch to another activity", cobra.ExactArgs(1),
			func(ctx context.Context, h trackerCLI, args []string) (trackerdto.StateOutput, error) {
				return h.Switch(ctx, args[0])
			}),
		control("stop", "Stop the running activity", cobra.NoArgs,
			func(ctx context.Context, h trackerCLI, _ []string) (trackerdto.StateOutput, error) {
				return h.Stop(ctx)
			}),
		control("tick", "Credit elapsed time now", cobra.NoArgs,
			func(ctx context.Context, h trackerCLI, _ []string) (trackerdto.StateOutput, error) {
				return h.Tick(ctx)
			}),
		control("status", "Show what is being tracked", cobra.NoArgs,
			func(ctx context.Context, h trackerCLI, _ []string) (trackerdto.StateOutput, error) {
				return h.Status(ctx)
			}),
	}
}

type trackerCLI interface {
	Start(ctx context.Context, name string) (trackerdto.StateOutput, error)
	Switch(ctx context.Context, name string) (trackerdto.StateOutput, error)
	Stop(ctx context.Context) (trackerdto.StateOutput, error)
	Tick(ctx context.Context) (trackerdto.StateOutput, error)
	Status(ctx context.Context) (trackerdto.StateOutput, error)
}

func printState(w io.Writer, st trackerdto.StateOutput) {
	if !st.Running {
		_, _ = fmt.Fprintln(w, "idle")
	} else {
		_, _ = fmt.Fprintf(w, "running %s session=%d elapsed=%s since=%s\n",
			st.Activity, st.SessionID, durfmt.HMS(st.ElapsedSec), st.StartedAt.Format(time.DateTime))
	}
	if st.LastError != "" {
		_, _ = fmt.Fprintf(w, "last error: %s\n", st.LastError)
	}
}

func newTodayCmd(dataDir *string) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show credited time per activity for today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				var totals []trackerdto.TotalOutput
				if day.IsZero() {
					totals, err = app.TrackerCLI.Today(cmd.Context())
				} else {
					totals, err = app.TrackerCLI.TotalsFor(cmd.Context(), day)
				}
				if err != nil {
					return err
				}
				if len(totals) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no time recorded")
					return nil
				}
				var sum float64
				for _, t := range totals {
					sum += t.Seconds
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", t.Activity, durfmt.Seconds(t.Seconds))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", "total", durfmt.Seconds(sum))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show as YYYY-MM-DD, defaults to today")
	return cmd
}

func newSessionsCmd(dataDir *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				sessions, err := app.TrackerCLI.Sessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s -> %s\t%s\n",
						s.ID, s.Activity, s.Start.Format(time.DateTime), s.End.Format(time.TimeOnly), durfmt.HMS(s.DurationSec))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list, 0 for all")
	return cmd
}

func newActivitiesCmd(dataDir *string) *cobra.Command {
	activities := &cobra.Command{
		Use:   "activities",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				names, err := app.ActivityCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
	activities.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				name, err := app.ActivityCLI.Add(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", name)
				return nil
			})
		},
	})
	return activities
}

func newReportCmd(dataDir *string) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Produce Markdown reports"}

	var date, dailyOut string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Totals and sessions for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				out, err := app.ReportCLI.Daily(cmd.Context(), day, dailyOut)
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), out.Path, out.Rendered)
			})
		},
	}
	daily.Flags().StringVar(&date, "date", "", "day to report as YYYY-MM-DD, defaults to today")
	daily.Flags().StringVar(&dailyOut, "out", "", "write the report note to this path instead of the terminal")

	var limit int
	var allOut string
	allTime := &cobra.Command{
		Use:   "all-time",
		Short: "Total time per activity across all sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				out, err := app.ReportCLI.AllTime(cmd.Context(), limit, allOut)
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), out.Path, out.Rendered)
			})
		},
	}
	allTime.Flags().IntVar(&limit, "sessions", 0, "also list this many recent sessions")
	allTime.Flags().StringVar(&allOut, "out", "", "write the report note to this path instead of the terminal")

	report.AddCommand(daily, allTime)
	return report
}

func printReport(w io.Writer, path, rendered string) error {
	if path != "" {
		_, err := fmt.Fprintf(w, "report written to %s\n", path)
		return err
	}
	_, err := fmt.Fprint(w, rendered)
	return err
}

func newPluginCmd(dataDir *string) *cobra.Command {
	pluginCmd := &cobra.Command{Use: "plugin", Short: "Trigger plugin commands"}

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured trigger plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				plugins, err := app.TriggerCLI.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(plugins) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins")
					return nil
				}
				for _, p := range plugins {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t poll=%s binary=%s\n", p.Name, p.Version, p.Enabled, p.PollInterval, p.Binary)
				}
				return nil
			})
		},
	})

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check plugin binaries, checksums and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *dataDir, func(app *bootstrap.App) error {
				results, err := app.TriggerCLI.Doctor(cmd.Context())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins")
					return nil
				}
				failed := 0
				for _, r := range results {
					line := fmt.Sprintf("%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						failed++
						line += fmt.Sprintf(" error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				if failed > 0 {
					return fmt.Errorf("%d plugin(s) failed checks", failed)
				}
				return nil
			})
		},
	})
	return pluginCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// parseDate reads a YYYY-MM-DD day. Empty input yields the zero time, which
// callers treat as today in the configured zone.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return day, nil
}
