package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/checker"
	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// errTimeAndCron is returned when both --time and --cron are given.
	errTimeAndCron = errors.New("--time and --cron are mutually exclusive")
	// errNothingToChange is returned by edit without any field flag.
	errNothingToChange = errors.New("nothing to change, pass at least one field flag")
	// errInvalidID is returned for ids that are not positive integers.
	errInvalidID = errors.New("invalid alarm id")
)

// alarmFlags hold the editable alarm fields.
type alarmFlags struct {
	// clock is the alarm time as HH:MM.
	clock string
	// cron is a cron line with a single clock time.
	cron string
	// days is the repeat mask ("mon,wed", "weekdays", "once").
	days string
	// label is the caption.
	label string
	// enabled switches the alarm on.
	enabled bool
	// prealarm enables the pre-alarm.
	prealarm bool
	// vibrate asks the ringing side to vibrate.
	vibrate bool
}

func (f *alarmFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.clock, "time", "t", "", "alarm time as HH:MM")
	flags.StringVar(&f.cron, "cron", "", `cron line with one clock time, e.g. "30 6 * * 1-5"`)
	flags.StringVarP(&f.days, "days", "d", "", `repeat days: "mon,wed", "weekdays", "weekend", "daily" or "once"`)
	flags.StringVarP(&f.label, "label", "l", "", "alarm label")
	flags.BoolVarP(&f.enabled, "enabled", "e", false, "switch the alarm on")
	flags.BoolVarP(&f.prealarm, "prealarm", "p", false, "ring a pre-alarm before the alarm")
	flags.BoolVar(&f.vibrate, "vibrate", false, "vibrate while ringing")
}

// change builds an edit from the flags the user actually set.
func (f *alarmFlags) change(flags *pflag.FlagSet) (alarm.Change, error) {
	var change alarm.Change

	if flags.Changed("time") && flags.Changed("cron") {
		return change, errTimeAndCron
	}

	if flags.Changed("time") {
		clock, err := alarm.ParseClockTime(f.clock)
		if err != nil {
			return change, err
		}

		change = change.WithHour(clock.Hour).WithMinute(clock.Minute)
	}

	if flags.Changed("cron") {
		hour, minute, days, err := alarm.ParseCron(f.cron)
		if err != nil {
			return change, err
		}

		change = change.WithHour(hour).WithMinute(minute).WithDaysOfWeek(days)
	}

	if flags.Changed("days") {
		days, err := alarm.ParseDaysOfWeek(f.days)
		if err != nil {
			return change, err
		}

		change = change.WithDaysOfWeek(days)
	}

	if flags.Changed("label") {
		change = change.WithLabel(f.label)
	}

	if flags.Changed("enabled") {
		change = change.WithEnabled(f.enabled)
	}

	if flags.Changed("prealarm") {
		change = change.WithPrealarm(f.prealarm)
	}

	if flags.Changed("vibrate") {
		change = change.WithVibrate(f.vibrate)
	}

	return change, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, arg)
	}

	return id, nil
}

// idCommand builds a command taking a single alarm id.
func idCommand(use, short string, op func(id int) client.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, op(id))
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all alarms.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.List())
		},
	}
}

func newShowCommand() *cobra.Command {
	return idCommand("show", "Show one alarm.", client.Show)
}

func newCreateCommand() *cobra.Command {
	var flags alarmFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an alarm.",
		Long: `Creates an alarm. Unset fields keep their defaults: 08:30, once, disabled.

Examples:
  alarm-clock create --time 06:30 --days weekdays --enabled
  alarm-clock create --cron "0 7 * * 6,0" --label weekend --enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			change, err := flags.change(cmd.Flags())
			if err != nil {
				return err
			}

			return run(cmd, client.Create(change))
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newEditCommand() *cobra.Command {
	var flags alarmFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an alarm.",
		Long: `Changes only the fields given as flags. Editing a ringing alarm silences it
and re-arms it for its next occurrence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			change, err := flags.change(cmd.Flags())
			if err != nil {
				return err
			}

			if change.IsEmpty() {
				return errNothingToChange
			}

			return run(cmd, client.Edit(id, change))
		},
	}

	flags.register(cmd.Flags())

	return cmd
}

func newEnableCommand(enable bool) *cobra.Command {
	if enable {
		return idCommand("enable", "Switch an alarm on.", func(id int) client.Operation {
			return client.Enable(id, true)
		})
	}

	return idCommand("disable", "Switch an alarm off.", func(id int) client.Operation {
		return client.Enable(id, false)
	})
}

func newSnoozeCommand() *cobra.Command {
	var until string

	cmd := &cobra.Command{
		Use:   "snooze <id>",
		Short: "Snooze a ringing alarm.",
		Long: `Snoozes a ringing alarm for the configured snooze duration, or until the
clock time given with --time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var at *alarm.ClockTime

			if cmd.Flags().Changed("time") {
				clock, err := alarm.ParseClockTime(until)
				if err != nil {
					return err
				}

				at = &clock
			}

			return run(cmd, client.Snooze(id, at))
		},
	}

	cmd.Flags().StringVarP(&until, "time", "t", "", "snooze until HH:MM")

	return cmd
}

func newDismissCommand() *cobra.Command {
	return idCommand("dismiss", "Dismiss a ringing or snoozed alarm.", client.Dismiss)
}

func newDeleteCommand() *cobra.Command {
	cmd := idCommand("delete", "Delete an alarm.", client.Delete)
	cmd.Aliases = []string{"rm"}

	return cmd
}

func newNextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next armed wake-up.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Next())
		},
	}
}

func newWatchCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Log alarm changes until interrupted.",
		Long: `Polls the daemon and logs created and deleted alarms, state changes,
alarms starting or stopping to ring and changes of the next wake-up.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return checker.Run(ctx, &checker.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  interval,
			})
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", checker.DefaultPollInterval, "poll interval")

	return cmd
}
