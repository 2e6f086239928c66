package alarms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the "sqlite" database/sql driver.

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

const sqliteDriverName = "sqlite"

const schemaAlarms = `
CREATE TABLE IF NOT EXISTS alarms (
    id INTEGER PRIMARY KEY,
    hour INTEGER NOT NULL,
    minute INTEGER NOT NULL,
    days_of_week INTEGER NOT NULL,
    is_enabled BOOLEAN NOT NULL,
    is_prealarm_enabled BOOLEAN NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    vibrate BOOLEAN NOT NULL,
    state TEXT NOT NULL,
    alarm_time INTEGER,
    occurrence_type TEXT NOT NULL DEFAULT '',
    occurrence_time INTEGER
);

CREATE TABLE IF NOT EXISTS alarm_sequence (
    name TEXT PRIMARY KEY,
    last_id INTEGER NOT NULL
);
`

const querySelectAlarms = `
SELECT id, hour, minute, days_of_week, is_enabled, is_prealarm_enabled,
       label, vibrate, state, alarm_time, occurrence_type, occurrence_time
FROM alarms
ORDER BY id
`

const queryUpsertAlarm = `
INSERT INTO alarms (
    id, hour, minute, days_of_week, is_enabled, is_prealarm_enabled,
    label, vibrate, state, alarm_time, occurrence_type, occurrence_time
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    hour = excluded.hour,
    minute = excluded.minute,
    days_of_week = excluded.days_of_week,
    is_enabled = excluded.is_enabled,
    is_prealarm_enabled = excluded.is_prealarm_enabled,
    label = excluded.label,
    vibrate = excluded.vibrate,
    state = excluded.state,
    alarm_time = excluded.alarm_time,
    occurrence_type = excluded.occurrence_type,
    occurrence_time = excluded.occurrence_time
`

const queryDeleteAlarm = `DELETE FROM alarms WHERE id = ?`

const querySelectLastID = `SELECT last_id FROM alarm_sequence WHERE name = 'alarms'`

const queryBumpLastID = `
INSERT INTO alarm_sequence (name, last_id) VALUES ('alarms', ?)
ON CONFLICT(name) DO UPDATE SET last_id = max(last_id, excluded.last_id)
`

// SQLite stores alarms in a SQLite database, one row per alarm.
type SQLite struct {
	// db is the shared connection pool.
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// A single writer keeps SQLite away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	repo := NewSQLite(db)
	if err = repo.Migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return repo, nil
}

// NewSQLite wraps an already opened database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{
		db: db,
	}
}

// Migrate creates the tables when missing.
func (r *SQLite) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaAlarms); err != nil {
		return fmt.Errorf("apply alarms schema: %w", err)
	}

	return nil
}

// Query returns every stored alarm ordered by id.
func (r *SQLite) Query(ctx context.Context) ([]alarm.Value, error) {
	rows, err := r.db.QueryContext(ctx, querySelectAlarms)
	if err != nil {
		return nil, fmt.Errorf("query alarms: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var result []alarm.Value

	for rows.Next() {
		var (
			v              alarm.Value
			days           int64
			state          string
			occurrenceType string
			alarmTime      sql.NullInt64
			occurrenceTime sql.NullInt64
		)

		err = rows.Scan(
			&v.ID,
			&v.Hour,
			&v.Minute,
			&days,
			&v.IsEnabled,
			&v.IsPrealarmEnabled,
			&v.Label,
			&v.Vibrate,
			&state,
			&alarmTime,
			&occurrenceType,
			&occurrenceTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alarm row: %w", err)
		}

		v.DaysOfWeek = alarm.DaysOfWeek(days) //nolint:gosec // Range is validated by the manager on load.
		v.State = alarm.State(state)
		v.OccurrenceType = alarm.OccurrenceType(occurrenceType)
		v.AlarmTime = fromUnix(alarmTime)
		v.OccurrenceTime = fromUnix(occurrenceTime)

		result = append(result, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alarm rows: %w", err)
	}

	return result, nil
}

// Save upserts changed and deletes removed ids in one transaction.
func (r *SQLite) Save(ctx context.Context, changed []alarm.Value, removed []int) error {
	if len(changed) == 0 && len(removed) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	lastID := 0

	for _, v := range changed {
		lastID = max(lastID, v.ID)

		_, err = tx.ExecContext(ctx, queryUpsertAlarm,
			v.ID,
			v.Hour,
			v.Minute,
			int64(v.DaysOfWeek),
			v.IsEnabled,
			v.IsPrealarmEnabled,
			v.Label,
			v.Vibrate,
			string(v.State),
			toUnix(v.AlarmTime),
			string(v.OccurrenceType),
			toUnix(v.OccurrenceTime),
		)
		if err != nil {
			return fmt.Errorf("upsert alarm %d: %w", v.ID, err)
		}
	}

	for _, id := range removed {
		if _, err = tx.ExecContext(ctx, queryDeleteAlarm, id); err != nil {
			return fmt.Errorf("delete alarm %d: %w", id, err)
		}
	}

	if lastID > 0 {
		if _, err = tx.ExecContext(ctx, queryBumpLastID, lastID); err != nil {
			return fmt.Errorf("update alarm sequence: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}

	return nil
}

// LastID returns the highest id ever saved, including deleted alarms.
func (r *SQLite) LastID(ctx context.Context) (int, error) {
	var lastID int

	err := r.db.QueryRowContext(ctx, querySelectLastID).Scan(&lastID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("query alarm sequence: %w", err)
	}

	return lastID, nil
}

// Close closes the database.
func (r *SQLite) Close() error {
	return r.db.Close()
}

// toUnix stores instants as Unix seconds; the zero time becomes NULL.
func toUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}

	return time.Unix(v.Int64, 0)
}
