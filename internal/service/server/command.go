package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mitchellh/go-ps"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarmclock"
	"github.com/oshokin/alarm-clock/internal/api/web"
	"github.com/oshokin/alarm-clock/internal/calendar"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/notify"
	repository "github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/rtc"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/scheduler"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Options controls the alarm clock daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the gRPC listen address from config.
	ListenAddress string
	// HTTPAddress overrides the HTTP listen address from config.
	HTTPAddress string
	// StoragePath overrides the storage location from config.
	StoragePath string
	// AllowMultiple skips the single-instance check.
	AllowMultiple bool
	// Verbose pins debug logging regardless of the configured level.
	Verbose bool

	// FS is the filesystem for the file storage driver. Nil means the OS filesystem.
	FS afero.Fs
	// Calendar is the source of "now". Nil means the system clock.
	Calendar calendar.Source
	// Ready is called once both listeners are bound, with their actual addresses.
	Ready func(grpcAddress, httpAddress string)
}

// Run starts the daemon and blocks until ctx is canceled or a server fails.
// A missing configuration file at the default path falls back to defaults.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := loadSettings(ctx, opts)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg, opts.Verbose)
	if err != nil {
		return err
	}

	defer closeLog()

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clockd")

	if !opts.AllowMultiple {
		if err = ensureSingleInstance(ps.Processes); err != nil {
			return err
		}
	}

	d, err := newDaemon(ctx, cfg, opts)
	if err != nil {
		return err
	}

	defer d.close(ctx)

	return d.run(ctx, opts)
}

// setupLogging applies the configured level and, when requested, tees the
// log into a file and pins the debug level.
func setupLogging(cfg *config.Config, verbose bool) (func(), error) {
	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	if cfg.LogFile == "" && !verbose {
		return func() {}, nil
	}

	var options []zap.Option
	if verbose {
		options = append(options, logger.WithLevel(zapcore.DebugLevel))
	}

	if cfg.LogFile == "" {
		logger.SetLogger(logger.New(nil, options...))

		return func() {}, nil
	}

	file, err := os.OpenFile(filepath.Clean(cfg.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger.SetLogger(logger.NewWithWriter(io.MultiWriter(os.Stdout, file), nil, options...))

	return func() {
		_ = logger.Logger().Sync()
		_ = file.Close()
	}, nil
}

// loadSettings reads the config file and applies command line overrides.
func loadSettings(ctx context.Context, opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && (opts.ConfigPath == "" || opts.ConfigPath == config.DefaultConfigFilename):
		logger.WarnKV(ctx, "Settings file not found, using defaults", "path", config.DefaultConfigFilename)

		cfg = config.Default()
	default:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.ListenAddress != "" {
		cfg.GRPCAddress = opts.ListenAddress
	}

	if opts.HTTPAddress != "" {
		cfg.HTTPAddress = opts.HTTPAddress
	}

	if opts.StoragePath != "" {
		cfg.Storage.Path = opts.StoragePath
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}

// daemon holds the wired components.
type daemon struct {
	// cfg is the validated configuration.
	cfg *config.Config
	// repo persists alarms.
	repo repository.Repository
	// registry collects the daemon metrics.
	registry *prometheus.Registry
	// metrics are the alarm metrics.
	metrics *metrics.Metrics
	// prefs is the live preference snapshot.
	prefs *config.LivePrefs
	// source is the clock.
	source calendar.Source
	// store is the alarm list.
	store *store.Store
	// hub streams actions to WebSocket clients.
	hub *web.Hub
	// webhook posts actions when configured.
	webhook *notify.Webhook
	// manager owns the state machines.
	manager *alarms.Manager
	// timer fires the armed wake-up.
	timer *rtc.Timer
}

func newDaemon(ctx context.Context, cfg *config.Config, opts *Options) (*daemon, error) {
	filesystem := opts.FS
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}

	source := opts.Calendar
	if source == nil {
		source = calendar.System{}
	}

	repo, err := repository.Open(ctx, filesystem, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open alarm storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d := &daemon{
		cfg:      cfg,
		repo:     repo,
		registry: registry,
		metrics:  metrics.New(registry),
		prefs:    config.NewLivePrefs(cfg.Prefs),
		source:   source,
		store:    store.New(),
	}

	d.hub = web.NewHub(d.prefs)
	notifier := notify.Multi{notify.Log{}, d.hub}

	if cfg.WebhookURL != "" {
		if d.webhook, err = notify.NewWebhook(cfg.WebhookURL, d.prefs); err != nil {
			_ = repo.Close()

			return nil, fmt.Errorf("create webhook notifier: %w", err)
		}

		notifier = append(notifier, d.webhook)
	}

	d.manager = alarms.NewManager(alarms.Dependencies{
		Store:    d.store,
		Query:    repo,
		Notifier: notifier,
		Calendar: source,
		Prefs:    d.prefs,
		Metrics:  d.metrics,
	})

	d.timer = rtc.New(source, func(ctx context.Context, entry alarm.ScheduledEntry) {
		if err := d.manager.OnEntryFired(entry); err != nil {
			logger.WarnKV(ctx, "Wake-up for unknown alarm", "entry", entry.String(), "error", err)
		}
	})

	return d, nil
}

// run starts every component and waits for shutdown.
func (d *daemon) run(ctx context.Context, opts *Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseline, err := d.manager.Start(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to load alarms, starting empty", "error", err)
	}

	grpcListener, err := listen(ctx, d.cfg.GRPCAddress)
	if err != nil {
		return err
	}

	var httpListener net.Listener
	if d.cfg.HTTPAddress != "" {
		if httpListener, err = listen(ctx, d.cfg.HTTPAddress); err != nil {
			_ = grpcListener.Close()

			return err
		}
	}

	var wg sync.WaitGroup

	wg.Go(func() { alarms.NewPersister(d.store, d.repo).Run(ctx, baseline) })
	wg.Go(func() { d.timer.Run(logger.WithName(ctx, "rtc")) })
	wg.Go(func() { scheduler.New(d.store, d.timer, d.metrics).Run(ctx) })
	wg.Go(func() {
		calendar.NewWatcher(d.source, d.cfg.ClockCheckInterval, calendar.DefaultTolerance, func(ctx context.Context) {
			logger.InfoKV(ctx, "Clock or time zone changed, rescheduling alarms")
			d.manager.TimeSetChanged()
		}).Run(ctx)
	})
	wg.Go(func() { d.watchReloads(ctx, opts.ConfigPath) })

	if d.webhook != nil {
		wg.Go(func() { d.webhook.Run(ctx) })
	}

	errs := make(chan error, 2)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.LoggingInterceptor(ctx)))
	api.RegisterAlarmClockServer(grpcServer, api.NewServer(d.manager, d.store))

	wg.Go(func() {
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errs <- fmt.Errorf("serve gRPC: %w", err)
		}
	})

	var httpServer *http.Server

	httpAddress := ""
	if httpListener != nil {
		gin.SetMode(gin.ReleaseMode)

		handler := web.NewHandler(ctx, d.store, d.manager, d.hub, d.prefs, d.registry)
		httpServer = &http.Server{
			Handler:           handler.InitRoutes(),
			ReadHeaderTimeout: d.cfg.Timeout,
		}
		httpAddress = httpListener.Addr().String()

		wg.Go(func() {
			if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("serve HTTP: %w", err)
			}
		})
	}

	logger.InfoKV(ctx, "Alarm clock daemon started",
		"grpc_address", grpcListener.Addr().String(),
		"http_address", httpAddress,
		"storage_driver", d.cfg.Storage.Driver,
		"storage_path", d.cfg.Storage.Path,
		"alarms", baseline.Len(),
	)

	if opts.Ready != nil {
		opts.Ready(grpcListener.Addr().String(), httpAddress)
	}

	var runErr error

	select {
	case <-ctx.Done():
	case runErr = <-errs:
		logger.ErrorKV(ctx, "Server failed, shutting down", "error", runErr)
	}

	logger.Info(ctx, "Shutting down alarm clock daemon")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.Timeout)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "HTTP server shutdown failed", "error", err)
		}
	}

	grpcServer.GracefulStop()
	cancel()
	wg.Wait()
	d.manager.Wait()

	logger.Info(ctx, "Alarm clock daemon stopped")

	return runErr
}

// watchReloads re-reads the preferences and log level on SIGHUP.
func (d *daemon) watchReloads(ctx context.Context, configPath string) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)

	defer signal.Stop(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			if err := d.reload(ctx, configPath); err != nil {
				logger.ErrorKV(ctx, "Failed to reload settings", "error", err)
			}
		}
	}
}

// reload applies the preferences and log level of the settings file.
// Listen addresses and storage are only read at startup.
func (d *daemon) reload(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	d.prefs.Store(cfg.Prefs)
	d.manager.TimeSetChanged()

	logger.InfoKV(ctx, "Settings reloaded",
		"prealarm_minutes", cfg.Prefs.PrealarmMinutes,
		"snooze_minutes", cfg.Prefs.SnoozeMinutes,
		"auto_silence_minutes", cfg.Prefs.AutoSilenceMinutes,
		"log_level", cfg.LogLevel,
	)

	return nil
}

func (d *daemon) close(ctx context.Context) {
	if err := d.repo.Close(); err != nil {
		logger.WarnKV(ctx, "Failed to close alarm storage", "error", err)
	}
}

func listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return lis, nil
}
