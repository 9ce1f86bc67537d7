package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/anpopa/tkmviewer-sub000/internal/action"
	"github.com/anpopa/tkmviewer-sub000/internal/config"
	"github.com/anpopa/tkmviewer-sub000/internal/entrypool"
	"github.com/anpopa/tkmviewer-sub000/internal/logger"
	"github.com/anpopa/tkmviewer-sub000/internal/model"
	"github.com/anpopa/tkmviewer-sub000/internal/tkm"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const actionTimeout = 5 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand for one invocation.
type app struct {
	v           *viper.Viper
	configPath  string
	metricsAddr string

	file     *config.File
	ctx      *tkm.Context
	registry *prometheus.Registry
	server   *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:               "tkmviewer",
		Short:             "Inspect TaskMonitor collector databases",
		Long:              "tkmviewer opens a TaskMonitor collector database read-only, lists its sessions and loads time windows of telemetry for printing or summarizing.",
		SilenceUsage:      true,
		PersistentPreRunE: a.start,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.Default().SettingsPath(), "settings file")
	flags.String("time-source", "", "clock used to filter samples: system, monotonic or receive")
	flags.String("interval", "", "window width when no end is given: 10s, 1m, 10m, 1h, 24h or nolimit")
	flags.String("log-level", "", "log level: trace, debug, info, warn or error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	_ = a.v.BindPFlag("data.time_source", flags.Lookup("time-source"))
	_ = a.v.BindPFlag("data.time_interval", flags.Lookup("interval"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newSessionsCmd(a),
		newDumpCmd(a),
		newSummaryCmd(a),
		newSettingsCmd(a),
	)
	return rootCmd
}

// start loads settings, configures logging and brings up the data context.
func (a *app) start(cmd *cobra.Command, _ []string) error {
	f, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger.ConfigureLogging(f.Logging)
	a.file = f

	settings, err := f.Settings()
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.ctx, err = tkm.New(settings, tkm.WithRegisterer(a.registry))
	if err != nil {
		return err
	}

	if a.metricsAddr != "" {
		a.serveMetrics()
	}

	log.Debug().Str("command", cmd.Name()).Stringer("source", settings.TimeSource()).
		Stringer("interval", settings.TimeInterval()).Msg("Viewer started")
	return nil
}

func (a *app) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{
		Addr:              a.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", a.metricsAddr).Msg("Serving metrics")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}

// run wraps a subcommand body so the data context is closed whether or not
// the body succeeds.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return errors.Join(fn(cmd, args), a.stop())
	}
}

func (a *app) stop() error {
	var errs []error
	if a.ctx != nil {
		errs = append(errs, a.ctx.Close())
		a.ctx = nil
	}
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.server.Shutdown(ctx))
		a.server = nil
	}
	return errors.Join(errs...)
}

// outcome is the final status delivered to an action callback.
type outcome struct {
	status action.Status
	err    error
}

// execute submits the action built by mk and blocks until it completes or
// fails. Progress reports are ignored.
func (a *app) execute(mk func(action.Callback) *action.Action) error {
	done := make(chan outcome, 1)
	act := mk(func(_ *action.Action, status action.Status, err error) {
		if status == action.StatusProgress {
			return
		}
		done <- outcome{status: status, err: err}
	})

	if err := a.ctx.ExecuteAction(act); err != nil {
		return err
	}

	select {
	case o := <-done:
		if o.status == action.StatusFailed {
			if o.err == nil {
				o.err = errors.New("action failed")
			}
			return fmt.Errorf("%s: %w", act.Kind(), o.err)
		}
		return nil
	case <-time.After(actionTimeout):
		return fmt.Errorf("%s: timed out", act.Kind())
	}
}

// openSessions opens path and loads its session list.
func (a *app) openSessions(path string) error {
	if err := a.execute(func(cb action.Callback) *action.Action {
		return action.NewOpenDatabaseFile(path, cb)
	}); err != nil {
		return err
	}
	return a.execute(action.NewLoadSessions)
}

// loadWindow opens path and loads the data window described by args
// (hash, start and an optional end). A partial load is logged and the
// collections that did decode are kept; a load where nothing decoded fails.
func (a *app) loadWindow(path string, args []string) error {
	if err := a.openSessions(path); err != nil {
		return err
	}

	hash, start := args[0], args[1]
	err := a.execute(func(cb action.Callback) *action.Action {
		if len(args) > 2 {
			return action.NewLoadDataRange(hash, start, args[2], cb)
		}
		return action.NewLoadData(hash, start, cb)
	})
	if err == nil {
		return nil
	}

	snap := a.ctx.Snapshot()
	if snap.ActiveSession() == nil || !anyLoaded(&snap) {
		return err
	}
	log.Warn().Err(err).Str("hash", hash).Msg("Partial data load")
	return nil
}

func anyLoaded(s *entrypool.Snapshot) bool {
	for _, v := range model.DataVariants {
		if _, ok := s.Count(v); ok {
			return true
		}
	}
	return false
}
