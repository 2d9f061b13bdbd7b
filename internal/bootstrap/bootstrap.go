package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	activityinadapter "activitylog/internal/modules/activity/adapter/in"
	activityoutadapter "activitylog/internal/modules/activity/adapter/out"
	activityin "activitylog/internal/modules/activity/port/in"
	activityservice "activitylog/internal/modules/activity/service"
	activityusecase "activitylog/internal/modules/activity/usecase"
	reportinadapter "activitylog/internal/modules/report/adapter/in"
	reportoutadapter "activitylog/internal/modules/report/adapter/out"
	reportservice "activitylog/internal/modules/report/service"
	reportusecase "activitylog/internal/modules/report/usecase"
	trackerinadapter "activitylog/internal/modules/tracker/adapter/in"
	trackeroutadapter "activitylog/internal/modules/tracker/adapter/out"
	trackerdto "activitylog/internal/modules/tracker/dto"
	trackerservice "activitylog/internal/modules/tracker/service"
	trackerusecase "activitylog/internal/modules/tracker/usecase"
	triggerinadapter "activitylog/internal/modules/trigger/adapter/in"
	triggeroutadapter "activitylog/internal/modules/trigger/adapter/out"
	triggerin "activitylog/internal/modules/trigger/port/in"
	triggerservice "activitylog/internal/modules/trigger/service"
	triggerusecase "activitylog/internal/modules/trigger/usecase"
	"activitylog/internal/platform/clock"
	"activitylog/internal/platform/config"
	"activitylog/internal/platform/database"
	"activitylog/internal/platform/logging"
	"activitylog/internal/platform/retry"
	uiapp "activitylog/internal/ui/app"
)

const httpShutdownTimeout = 5 * time.Second

type App struct {
	Config config.Config
	Logger zerolog.Logger

	ActivityCLI activityinadapter.CLIHandler
	TrackerCLI  trackerinadapter.CLIHandler
	ReportCLI   reportinadapter.CLIHandler
	TriggerCLI  triggerinadapter.CLIHandler

	db         *database.DB
	activities activityin.Usecase
	sequencer  *trackerusecase.Sequencer
	triggers   triggerin.Usecase
	httpAPI    *trackerinadapter.HTTPHandler
	logCloser  io.Closer
}

// New opens storage, seeds the registry and wires every module. The
// accounting sequence is built but not started; Serve and RunTUI start it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, logCloser, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	clk := clock.SystemClock{Location: loc}

	db, err := database.Open(ctx, cfg, database.Options{
		Retry:  retry.Policy{Attempts: cfg.Storage.RetryAttempts, Interval: cfg.Storage.RetryInterval},
		Logger: logging.Component(logger, "database"),
	})
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	activityUC := activityusecase.NewInteractor(activityservice.NewRegistryService(
		activityoutadapter.NewSQLStore(db),
		db,
		logging.Component(logger, "activity"),
	))
	if err := activityUC.Seed(ctx, cfg.Activities); err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, fmt.Errorf("seed activities: %w", err)
	}

	trackerLog := logging.Component(logger, "tracker")
	store := trackeroutadapter.NewSQLStore(db, loc)
	reconciler := trackerservice.NewReconciler(store, store, trackerLog)
	sessionTracker := trackerservice.NewSessionTracker(reconciler, store, trackeroutadapter.NewActivityResolver(activityUC), trackerLog)
	interactor := trackerusecase.NewInteractor(sessionTracker, reconciler, store, store, db, clk, trackerLog)
	sequencer := trackerusecase.NewSequencer(interactor, cfg.TickInterval, logging.Component(logger, "sequencer"))

	triggerLog := logging.Component(logger, "trigger")
	triggerUC := triggerusecase.NewInteractor(triggerservice.NewTriggerService(
		triggeroutadapter.NewConfigManifestStore(cfg.Plugins),
		triggeroutadapter.NewGRPCHost(pluginLogger(triggerLog)),
		triggeroutadapter.NewTrackerDispatcher(sequencer),
		triggerLog,
	))

	reportUC := reportusecase.NewInteractor(reportservice.NewReportService(
		reportoutadapter.NewTrackerSource(sequencer),
		reportoutadapter.NewFileNoteStore(),
		reportoutadapter.NewGlamourRenderer(cfg.Report.Style, cfg.Report.Width),
		clk,
		logging.Component(logger, "report"),
	))

	return &App{
		Config:      cfg,
		Logger:      logger,
		ActivityCLI: activityinadapter.NewCLIHandler(activityUC),
		TrackerCLI:  trackerinadapter.NewCLIHandler(sequencer, sequencer),
		ReportCLI:   reportinadapter.NewCLIHandler(reportUC),
		TriggerCLI:  triggerinadapter.NewCLIHandler(triggerUC),
		db:          db,
		activities:  activityUC,
		sequencer:   sequencer,
		triggers:    triggerUC,
		httpAPI:     trackerinadapter.NewHTTPHandler(sequencer, activityUC, logging.Component(logger, "http")),
		logCloser:   logCloser,
	}, nil
}

// Remote returns a handler whose writes go to the running instance at addr.
// Only its write and Status methods may be used.
func Remote(addr string, timeout time.Duration) (trackerinadapter.CLIHandler, error) {
	client, err := trackeroutadapter.NewRemoteClient(addr, timeout)
	if err != nil {
		return trackerinadapter.CLIHandler{}, err
	}
	return trackerinadapter.NewCLIHandler(client, nil), nil
}

// Close flushes the accounting sequence if it is still running, then closes
// storage.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	err := a.sequencer.Shutdown(ctx)
	return errors.Join(err, a.db.Close(), a.logCloser.Close())
}

// Serve runs the accounting sequence, the HTTP API (when http.listen is set)
// and the trigger listeners until ctx is cancelled or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.sequencer.Run(gctx) })
	g.Go(func() error { return a.autostart(gctx) })
	g.Go(func() error { return a.triggers.Run(gctx) })

	if listen := a.Config.HTTP.Listen; listen != "" {
		srv := &http.Server{
			Addr:              listen,
			Handler:           a.httpAPI.Router(),
			ReadHeaderTimeout: a.Config.HTTP.RequestTimeout,
		}
		g.Go(func() error {
			a.Logger.Info().Str("listen", listen).Msg("http api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http api: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), httpShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

// RunTUI serves in the background and runs the terminal UI in the
// foreground. Quitting the UI stops everything; a serve failure closes the UI.
func (a *App) RunTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bindings := make([]uiapp.Binding, 0, len(a.Config.Keys))
	for _, k := range a.Config.Keys {
		bindings = append(bindings, uiapp.Binding{Key: k.Key, Activity: k.Activity})
	}
	model := uiapp.NewModel(a.sequencer, a.activities, uiapp.Options{
		Bindings:    bindings,
		TotalsOrder: a.Config.Activities,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Serve(gctx) })
	g.Go(func() error {
		defer cancel()
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx)).Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func (a *App) autostart(ctx context.Context) error {
	if !a.Config.Autostart.Enabled {
		return nil
	}
	name := a.Config.Autostart.Activity
	if name == "" {
		var err error
		if name, err = a.activities.DefaultActivity(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("autostart skipped")
			return nil
		}
	}
	if _, err := a.sequencer.Start(ctx, trackerdto.StartInput{Name: name}); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		a.Logger.Warn().Err(err).Str(logging.KeyActivity, name).Msg("autostart failed")
	}
	return nil
}

// pluginLogger routes go-plugin output into the process logger.
func pluginLogger(logger zerolog.Logger) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "plugin",
		Output: logger,
		Level:  hclog.Info,
	})
}
