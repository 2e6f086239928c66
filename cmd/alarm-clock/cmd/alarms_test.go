package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

func parseAlarmFlags(t *testing.T, args ...string) (alarm.Change, error) {
	t.Helper()

	var (
		flags alarmFlags
		set   = pflag.NewFlagSet("test", pflag.ContinueOnError)
	)

	flags.register(set)
	require.NoError(t, set.Parse(args))

	return flags.change(set)
}

// TestAlarmFlags_change only sets the fields that were passed.
func TestAlarmFlags_change(t *testing.T) {
	t.Parallel()

	change, err := parseAlarmFlags(t)
	require.NoError(t, err)
	require.True(t, change.IsEmpty())

	change, err = parseAlarmFlags(t, "--time", "06:30", "--days", "weekdays", "--enabled", "--label", "work")
	require.NoError(t, err)
	require.Equal(t, 6, *change.Hour)
	require.Equal(t, 30, *change.Minute)
	require.Equal(t, alarm.Weekdays, *change.DaysOfWeek)
	require.True(t, *change.IsEnabled)
	require.Equal(t, "work", *change.Label)
	require.Nil(t, change.IsPrealarmEnabled)
	require.Nil(t, change.Vibrate)

	change, err = parseAlarmFlags(t, "--cron", "15 7 * * 6,0", "--prealarm=false")
	require.NoError(t, err)
	require.Equal(t, 7, *change.Hour)
	require.Equal(t, 15, *change.Minute)
	require.Equal(t, alarm.Weekend, *change.DaysOfWeek)
	require.False(t, *change.IsPrealarmEnabled)
}

// TestAlarmFlags_changeErrors rejects malformed values.
func TestAlarmFlags_changeErrors(t *testing.T) {
	t.Parallel()

	_, err := parseAlarmFlags(t, "--time", "06:30", "--cron", "30 6 * * *")
	require.ErrorIs(t, err, errTimeAndCron)

	_, err = parseAlarmFlags(t, "--time", "25:00")
	require.ErrorIs(t, err, alarm.ErrInvalidTime)

	_, err = parseAlarmFlags(t, "--cron", "0 6,7 * * *")
	require.ErrorIs(t, err, alarm.ErrInvalidTime)

	_, err = parseAlarmFlags(t, "--days", "someday")
	require.Error(t, err)
}

// TestParseID accepts positive integers only.
func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID("12")
	require.NoError(t, err)
	require.Equal(t, 12, id)

	for _, arg := range []string{"0", "-1", "x"} {
		_, err = parseID(arg)
		require.ErrorIs(t, err, errInvalidID)
	}
}
