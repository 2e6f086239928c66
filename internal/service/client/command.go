package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Options configures how the CLI reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Output receives the printed result. Nil means stdout.
	Output io.Writer
}

// Service is the daemon API used by the operations.
type Service interface {
	List(ctx context.Context) (store.Snapshot, error)
	Get(ctx context.Context, id int) (alarm.Value, error)
	Create(ctx context.Context, change alarm.Change) (alarm.Value, error)
	Edit(ctx context.Context, id int, change alarm.Change) (alarm.Value, error)
	Enable(ctx context.Context, id int, enable bool) (alarm.Value, error)
	Snooze(ctx context.Context, id int, at *alarm.ClockTime) (alarm.Value, error)
	Dismiss(ctx context.Context, id int) (alarm.Value, error)
	Delete(ctx context.Context, id int) error
	Next(ctx context.Context) (store.Next, error)
}

// Operation is one CLI command executed against the daemon.
type Operation func(ctx context.Context, service Service, p *Printer) error

// Run loads settings, connects to the daemon and executes the operation.
func Run(ctx context.Context, opts *Options, op Operation) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	cfg, err := LoadSettings(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.GRPCAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for the daemon's audit log.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to alarm clock daemon", "server_address", serverAddress, "actor", actor.String())

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return op(ctx, client, NewPrinter(out, cfg.Prefs, time.Now))
}

// LoadSettings reads the settings file. A missing file at the default
// location yields the defaults so the CLI works without any setup.
func LoadSettings(path string) (*config.Config, error) {
	cfg, err := config.Load(path)

	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, fs.ErrNotExist) && (path == "" || path == config.DefaultConfigFilename):
		return config.Default(), nil
	default:
		return nil, fmt.Errorf("load settings: %w", err)
	}
}

// List prints every alarm.
func List() Operation {
	return func(ctx context.Context, service Service, p *Printer) error {
		snapshot, err := service.List(ctx)
		if err != nil {
			return err
		}

		return p.Alarms(snapshot.Alarms)
	}
}

// Show prints one alarm.
func Show(id int) Operation {
	return single(func(ctx context.Context, service Service) (alarm.Value, error) {
		return service.Get(ctx, id)
	})
}

// Create adds an alarm with the given fields applied.
func Create(change alarm.Change) Operation {
	return single(func(ctx context.Context, service Service) (alarm.Value, error) {
		return service.Create(ctx, change)
	})
}

// Edit changes the given fields of an alarm.
func Edit(id int, change alarm.Change) Operation {
	return single(func(ctx context.Context, service Service) (alarm.Value, error) {
		return service.Edit(ctx, id, change)
	})
}

// Enable switches an alarm on or off.
func Enable(id int, enable bool) Operation {
	return single(func(ctx context.Context, service Service) (alarm.Value, error) {
		return service.Enable(ctx, id, enable)
	})
}

// Snooze snoozes a ringing alarm, until the given clock time when set.
func Snooze(id int, at *alarm.ClockTime) Operation {
	return single(func(ctx context.Context, service Service) (alarm.Value, error) {
		return service.Snooze(ctx, id, at)
	})
}

// Dismiss silences a ringing or snoozed alarm.
func Dismiss(id int) Operation {
	return single(func(ctx context.Context, service Service) (alarm.Value, error) {
		return service.Dismiss(ctx, id)
	})
}

// Delete removes an alarm.
func Delete(id int) Operation {
	return func(ctx context.Context, service Service, p *Printer) error {
		if err := service.Delete(ctx, id); err != nil {
			return err
		}

		return p.Deleted(id)
	}
}

// Next prints the wake-up the daemon has armed.
func Next() Operation {
	return func(ctx context.Context, service Service, p *Printer) error {
		next, err := service.Next(ctx)
		if err != nil {
			return err
		}

		return p.Next(next)
	}
}

func single(call func(ctx context.Context, service Service) (alarm.Value, error)) Operation {
	return func(ctx context.Context, service Service, p *Printer) error {
		v, err := call(ctx, service)
		if err != nil {
			return err
		}

		return p.Alarms([]alarm.Value{v})
	}
}
