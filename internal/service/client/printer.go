package client

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Printer renders daemon responses for a terminal.
type Printer struct {
	// out receives the rendered text.
	out io.Writer
	// prefs select the clock layout.
	prefs alarm.Prefs
	// now is used for relative times and supplies the display location.
	now func() time.Time
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, prefs alarm.Prefs, now func() time.Time) *Printer {
	return &Printer{out: out, prefs: prefs, now: now}
}

// Alarms prints a table of alarms.
func (p *Printer) Alarms(values []alarm.Value) error {
	if len(values) == 0 {
		_, err := fmt.Fprintln(p.out, "No alarms.")

		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tTIME\tDAYS\tENABLED\tPREALARM\tSTATE\tNEXT\tLABEL")

	for _, v := range values {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID,
			p.clock(v.Hour, v.Minute),
			v.DaysOfWeek,
			yesNo(v.IsEnabled),
			yesNo(v.IsPrealarmEnabled),
			v.State,
			p.when(v),
			v.Label,
		)
	}

	return w.Flush()
}

// Next prints the armed wake-up.
func (p *Printer) Next(next store.Next) error {
	if !next.Armed {
		_, err := fmt.Fprintln(p.out, "No alarm is armed.")

		return err
	}

	_, err := fmt.Fprintf(p.out, "Alarm #%d (%s) at %s, %s.\n",
		next.Entry.ID,
		next.Entry.Type,
		p.instant(next.Entry.Time),
		humanize.RelTime(next.Entry.Time, p.now(), "ago", "from now"),
	)

	return err
}

// Deleted confirms a removal.
func (p *Printer) Deleted(id int) error {
	_, err := fmt.Fprintf(p.out, "Alarm #%d deleted.\n", id)

	return err
}

func (p *Printer) when(v alarm.Value) string {
	if !v.HasAlarmTime() {
		return "-"
	}

	return fmt.Sprintf("%s %s (%s)",
		v.OccurrenceType,
		p.instant(v.AlarmTime),
		humanize.RelTime(v.AlarmTime, p.now(), "ago", "from now"),
	)
}

func (p *Printer) instant(t time.Time) string {
	return t.In(p.now().Location()).Format("Mon 2006-01-02 " + p.prefs.ClockLayout())
}

func (p *Printer) clock(hour, minute int) string {
	return time.Date(2000, time.January, 1, hour, minute, 0, 0, time.UTC).Format(p.prefs.ClockLayout())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
