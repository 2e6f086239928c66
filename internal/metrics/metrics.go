package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

const metricPrefix = "alarm_clock_"

const (
	// ResultApplied labels a command that changed the alarm.
	ResultApplied = "applied"
	// ResultIgnored labels a command that has no transition in the current state.
	ResultIgnored = "ignored"
	// ResultError labels a command whose computation failed.
	ResultError = "error"

	// ResultSuccess labels a successful arm or cancel.
	ResultSuccess = "success"
	// ResultFailure labels a failed arm or cancel.
	ResultFailure = "failure"
)

// allStates lists the states exported by the per-state gauge.
//
//nolint:gochecknoglobals // Read-only label set.
var allStates = []alarm.State{
	alarm.StateDisabled,
	alarm.StateSet,
	alarm.StatePrealarmSet,
	alarm.StateFired,
	alarm.StatePrealarmFired,
	alarm.StateSnoozed,
}

// Metrics bundles the daemon collectors.
type Metrics struct {
	// CommandsTotal counts processed state machine commands by kind and result.
	CommandsTotal *prometheus.CounterVec
	// NotificationsTotal counts broadcast alarm actions.
	NotificationsTotal *prometheus.CounterVec
	// ArmsTotal counts setter calls by operation and result.
	ArmsTotal *prometheus.CounterVec
	// AlarmsByState reports how many alarms sit in each state.
	AlarmsByState *prometheus.GaugeVec
	// NextWakeSeconds is the Unix time of the armed wake-up, zero when none.
	NextWakeSeconds prometheus.Gauge
}

// New constructs the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total alarm commands by kind and result",
			},
			[]string{"command", "result"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total alarm state notifications by action",
			},
			[]string{"action"},
		),
		ArmsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "timer_operations_total",
				Help: "Total wake-up timer arm and cancel operations by result",
			},
			[]string{"operation", "result"},
		),
		AlarmsByState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "alarms",
				Help: "Number of alarms by state",
			},
			[]string{"state"},
		),
		NextWakeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "next_wake_timestamp_seconds",
			Help: "Unix time of the armed wake-up, zero when nothing is armed",
		}),
	}

	reg.MustRegister(
		m.CommandsTotal,
		m.NotificationsTotal,
		m.ArmsTotal,
		m.AlarmsByState,
		m.NextWakeSeconds,
	)

	return m
}

// CommandProcessed counts one state machine command.
func (m *Metrics) CommandProcessed(command, result string) {
	if m == nil {
		return
	}

	m.CommandsTotal.WithLabelValues(command, result).Inc()
}

// NotificationSent counts one broadcast action.
func (m *Metrics) NotificationSent(action alarm.Action) {
	if m == nil {
		return
	}

	m.NotificationsTotal.WithLabelValues(string(action)).Inc()
}

// TimerOperation counts one arm or cancel.
func (m *Metrics) TimerOperation(operation string, err error) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.ArmsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveAlarms recomputes the per-state gauge from a full list.
func (m *Metrics) ObserveAlarms(values []alarm.Value) {
	if m == nil {
		return
	}

	counts := make(map[alarm.State]int, len(allStates))
	for _, v := range values {
		counts[v.State]++
	}

	for _, state := range allStates {
		m.AlarmsByState.WithLabelValues(string(state)).Set(float64(counts[state]))
	}
}

// ObserveNext records the armed wake-up.
func (m *Metrics) ObserveNext(entry alarm.ScheduledEntry, armed bool) {
	if m == nil {
		return
	}

	if !armed {
		m.NextWakeSeconds.Set(0)

		return
	}

	m.NextWakeSeconds.Set(float64(entry.Time.Unix()))
}
