package alarms

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// errUnknownDriver is returned for unsupported storage drivers.
var errUnknownDriver = errors.New("unknown storage driver")

// Repository defines persistence operations for the alarm set.
type Repository interface {
	// Query returns every stored alarm ordered by id.
	Query(ctx context.Context) ([]alarm.Value, error)
	// Save upserts changed and deletes removed ids in one batch.
	Save(ctx context.Context, changed []alarm.Value, removed []int) error
	// LastID returns the highest id ever saved, so deleted ids are not handed out again.
	LastID(ctx context.Context) (int, error)
	// Close releases the underlying resources.
	Close() error
}

// Open returns the repository selected by storage. The file driver uses fs.
func Open(ctx context.Context, fs afero.Fs, storage config.Storage) (Repository, error) {
	switch storage.Driver {
	case config.DriverFile:
		return NewFile(fs, storage.Path), nil
	case "", config.DriverSQLite:
		return OpenSQLite(ctx, storage.Path)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, storage.Driver)
	}
}
