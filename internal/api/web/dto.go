package web

import (
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

// alarmJSON is the JSON form of one alarm.
type alarmJSON struct {
	ID             int        `json:"id"`
	Clock          string     `json:"clock"`
	Hour           int        `json:"hour"`
	Minute         int        `json:"minute"`
	Days           string     `json:"days"`
	Enabled        bool       `json:"enabled"`
	Prealarm       bool       `json:"prealarm"`
	Label          string     `json:"label,omitempty"`
	Vibrate        bool       `json:"vibrate"`
	State          string     `json:"state"`
	AlarmTime      *time.Time `json:"alarm_time,omitempty"`
	OccurrenceType string     `json:"occurrence_type,omitempty"`
}

// listJSON is the JSON form of a snapshot.
type listJSON struct {
	Version uint64      `json:"version"`
	Alarms  []alarmJSON `json:"alarms"`
}

// nextJSON is the JSON form of the scheduler decision.
type nextJSON struct {
	Armed bool       `json:"armed"`
	ID    int        `json:"id,omitempty"`
	Type  string     `json:"type,omitempty"`
	Time  *time.Time `json:"time,omitempty"`
}

// actionJSON is one alarm action pushed to WebSocket clients.
type actionJSON struct {
	AlarmID int          `json:"alarm_id"`
	Action  alarm.Action `json:"action"`
	// AutoSilenceMinutes tells the ringing side when to stop on its own.
	AutoSilenceMinutes int `json:"auto_silence_minutes"`
}

// envelope wraps every WebSocket message.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Envelope types.
const (
	messageAlarms = "alarms"
	messageNext   = "next"
	messageAction = "action"
)

func toAlarmJSON(v alarm.Value, prefs alarm.Prefs) alarmJSON {
	result := alarmJSON{
		ID:             v.ID,
		Clock:          time.Date(2000, time.January, 1, v.Hour, v.Minute, 0, 0, time.UTC).Format(prefs.ClockLayout()),
		Hour:           v.Hour,
		Minute:         v.Minute,
		Days:           v.DaysOfWeek.String(),
		Enabled:        v.IsEnabled,
		Prealarm:       v.IsPrealarmEnabled,
		Label:          v.Label,
		Vibrate:        v.Vibrate,
		State:          string(v.State),
		OccurrenceType: string(v.OccurrenceType),
	}

	if v.HasAlarmTime() {
		at := v.AlarmTime
		result.AlarmTime = &at
	}

	return result
}

func toListJSON(snapshot store.Snapshot, prefs alarm.Prefs) listJSON {
	result := listJSON{
		Version: snapshot.Version,
		Alarms:  make([]alarmJSON, 0, snapshot.Len()),
	}

	for _, v := range snapshot.Alarms {
		result.Alarms = append(result.Alarms, toAlarmJSON(v, prefs))
	}

	return result
}

func toNextJSON(next store.Next) nextJSON {
	if !next.Armed {
		return nextJSON{}
	}

	at := next.Entry.Time

	return nextJSON{
		Armed: true,
		ID:    next.Entry.ID,
		Type:  string(next.Entry.Type),
		Time:  &at,
	}
}
