package alarmclock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/store"
)

// Struct field names shared by requests and responses.
const (
	FieldID             = "id"
	FieldHour           = "hour"
	FieldMinute         = "minute"
	FieldTime           = "time"
	FieldDays           = "days"
	FieldCron           = "cron"
	FieldEnabled        = "enabled"
	FieldPrealarm       = "prealarm"
	FieldLabel          = "label"
	FieldVibrate        = "vibrate"
	FieldState          = "state"
	FieldAlarmTime      = "alarm_time"
	FieldOccurrenceType = "occurrence_type"
	FieldOccurrenceTime = "occurrence_time"
	FieldAlarms         = "alarms"
	FieldVersion        = "version"
	FieldArmed          = "armed"
	FieldType           = "type"
)

// ErrInvalidField is returned when a struct field has the wrong kind.
var ErrInvalidField = errors.New("invalid field")

// AlarmToProto converts a domain alarm into its wire form.
func AlarmToProto(v alarm.Value) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldID:       v.ID,
		FieldHour:     v.Hour,
		FieldMinute:   v.Minute,
		FieldDays:     v.DaysOfWeek.String(),
		FieldEnabled:  v.IsEnabled,
		FieldPrealarm: v.IsPrealarmEnabled,
		FieldLabel:    v.Label,
		FieldVibrate:  v.Vibrate,
		FieldState:    string(v.State),
	}

	if expr := alarm.CronExpr(v); expr != "" {
		fields[FieldCron] = expr
	}

	if v.HasAlarmTime() {
		fields[FieldAlarmTime] = v.AlarmTime.Format(time.RFC3339)
		fields[FieldOccurrenceType] = string(v.OccurrenceType)
	}

	if !v.OccurrenceTime.IsZero() {
		fields[FieldOccurrenceTime] = v.OccurrenceTime.Format(time.RFC3339)
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode alarm %d: %w", v.ID, err)
	}

	return result, nil
}

// AlarmFromProto converts the wire form back into a domain alarm.
func AlarmFromProto(s *structpb.Struct) (alarm.Value, error) {
	var (
		v   alarm.Value
		err error
	)

	if v.ID, _, err = intField(s, FieldID); err != nil {
		return alarm.Value{}, err
	}

	if v.Hour, _, err = intField(s, FieldHour); err != nil {
		return alarm.Value{}, err
	}

	if v.Minute, _, err = intField(s, FieldMinute); err != nil {
		return alarm.Value{}, err
	}

	days, _, err := stringField(s, FieldDays)
	if err != nil {
		return alarm.Value{}, err
	}

	if v.DaysOfWeek, err = alarm.ParseDaysOfWeek(days); err != nil {
		return alarm.Value{}, err
	}

	if v.IsEnabled, _, err = boolField(s, FieldEnabled); err != nil {
		return alarm.Value{}, err
	}

	if v.IsPrealarmEnabled, _, err = boolField(s, FieldPrealarm); err != nil {
		return alarm.Value{}, err
	}

	if v.Label, _, err = stringField(s, FieldLabel); err != nil {
		return alarm.Value{}, err
	}

	if v.Vibrate, _, err = boolField(s, FieldVibrate); err != nil {
		return alarm.Value{}, err
	}

	state, _, err := stringField(s, FieldState)
	if err != nil {
		return alarm.Value{}, err
	}

	v.State = alarm.State(state)

	occurrence, _, err := stringField(s, FieldOccurrenceType)
	if err != nil {
		return alarm.Value{}, err
	}

	v.OccurrenceType = alarm.OccurrenceType(occurrence)

	if v.AlarmTime, err = timeField(s, FieldAlarmTime); err != nil {
		return alarm.Value{}, err
	}

	if v.OccurrenceTime, err = timeField(s, FieldOccurrenceTime); err != nil {
		return alarm.Value{}, err
	}

	return v, nil
}

// ChangeToProto encodes the fields present in change, plus id when positive.
func ChangeToProto(id int, change alarm.Change) (*structpb.Struct, error) {
	fields := make(map[string]any)

	if id > 0 {
		fields[FieldID] = id
	}

	if change.Hour != nil {
		fields[FieldHour] = *change.Hour
	}

	if change.Minute != nil {
		fields[FieldMinute] = *change.Minute
	}

	if change.DaysOfWeek != nil {
		fields[FieldDays] = change.DaysOfWeek.String()
	}

	if change.IsEnabled != nil {
		fields[FieldEnabled] = *change.IsEnabled
	}

	if change.IsPrealarmEnabled != nil {
		fields[FieldPrealarm] = *change.IsPrealarmEnabled
	}

	if change.Label != nil {
		fields[FieldLabel] = *change.Label
	}

	if change.Vibrate != nil {
		fields[FieldVibrate] = *change.Vibrate
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}

	return result, nil
}

// ChangeFromProto decodes the edit fields present in s. Besides the plain
// fields it accepts "time" as HH:MM and "cron" as a weekly cron line; the
// plain fields win when both are present.
func ChangeFromProto(s *structpb.Struct) (alarm.Change, error) {
	var change alarm.Change

	if clock, ok, err := stringField(s, FieldTime); err != nil {
		return alarm.Change{}, err
	} else if ok {
		at, err := alarm.ParseClockTime(clock)
		if err != nil {
			return alarm.Change{}, err
		}

		change = change.WithHour(at.Hour).WithMinute(at.Minute)
	}

	if expr, ok, err := stringField(s, FieldCron); err != nil {
		return alarm.Change{}, err
	} else if ok {
		hour, minute, days, err := alarm.ParseCron(expr)
		if err != nil {
			return alarm.Change{}, err
		}

		change = change.WithHour(hour).WithMinute(minute).WithDaysOfWeek(days)
	}

	if hour, ok, err := intField(s, FieldHour); err != nil {
		return alarm.Change{}, err
	} else if ok {
		change = change.WithHour(hour)
	}

	if minute, ok, err := intField(s, FieldMinute); err != nil {
		return alarm.Change{}, err
	} else if ok {
		change = change.WithMinute(minute)
	}

	if days, ok, err := stringField(s, FieldDays); err != nil {
		return alarm.Change{}, err
	} else if ok {
		mask, err := alarm.ParseDaysOfWeek(days)
		if err != nil {
			return alarm.Change{}, err
		}

		change = change.WithDaysOfWeek(mask)
	}

	if enabled, ok, err := boolField(s, FieldEnabled); err != nil {
		return alarm.Change{}, err
	} else if ok {
		change = change.WithEnabled(enabled)
	}

	if prealarm, ok, err := boolField(s, FieldPrealarm); err != nil {
		return alarm.Change{}, err
	} else if ok {
		change = change.WithPrealarm(prealarm)
	}

	if label, ok, err := stringField(s, FieldLabel); err != nil {
		return alarm.Change{}, err
	} else if ok {
		change = change.WithLabel(label)
	}

	if vibrate, ok, err := boolField(s, FieldVibrate); err != nil {
		return alarm.Change{}, err
	} else if ok {
		change = change.WithVibrate(vibrate)
	}

	return change, nil
}

// SnoozeRequest encodes a snooze of id, optionally to an explicit clock time.
func SnoozeRequest(id int, at *alarm.ClockTime) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldID: id,
	}

	if at != nil {
		fields[FieldTime] = at.String()
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode snooze: %w", err)
	}

	return result, nil
}

// SnoozeFromProto decodes a snooze request.
func SnoozeFromProto(s *structpb.Struct) (int, *alarm.ClockTime, error) {
	id, _, err := intField(s, FieldID)
	if err != nil {
		return 0, nil, err
	}

	clock, ok, err := stringField(s, FieldTime)
	if err != nil || !ok {
		return id, nil, err
	}

	at, err := alarm.ParseClockTime(clock)
	if err != nil {
		return 0, nil, err
	}

	return id, &at, nil
}

// SnapshotToProto encodes the full alarm list.
func SnapshotToProto(snapshot store.Snapshot) (*structpb.Struct, error) {
	list := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, snapshot.Len()),
	}

	for _, v := range snapshot.Alarms {
		encoded, err := AlarmToProto(v)
		if err != nil {
			return nil, err
		}

		list.Values = append(list.Values, structpb.NewStructValue(encoded))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldVersion: structpb.NewNumberValue(float64(snapshot.Version)),
			FieldAlarms:  structpb.NewListValue(list),
		},
	}, nil
}

// SnapshotFromProto decodes the full alarm list.
func SnapshotFromProto(s *structpb.Struct) (store.Snapshot, error) {
	version, _, err := intField(s, FieldVersion)
	if err != nil {
		return store.Snapshot{}, err
	}

	snapshot := store.Snapshot{
		Version: uint64(max(version, 0)), //nolint:gosec // Clamped to non-negative.
	}

	for _, item := range s.GetFields()[FieldAlarms].GetListValue().GetValues() {
		encoded := item.GetStructValue()
		if encoded == nil {
			return store.Snapshot{}, fmt.Errorf("%w: %s must hold objects", ErrInvalidField, FieldAlarms)
		}

		v, err := AlarmFromProto(encoded)
		if err != nil {
			return store.Snapshot{}, err
		}

		snapshot.Alarms = append(snapshot.Alarms, v)
	}

	return snapshot, nil
}

// NextToProto encodes the scheduler decision.
func NextToProto(next store.Next) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldArmed: next.Armed,
	}

	if next.Armed {
		fields[FieldID] = next.Entry.ID
		fields[FieldType] = string(next.Entry.Type)
		fields[FieldTime] = next.Entry.Time.Format(time.RFC3339)
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode next: %w", err)
	}

	return result, nil
}

// NextFromProto decodes the scheduler decision.
func NextFromProto(s *structpb.Struct) (store.Next, error) {
	armed, _, err := boolField(s, FieldArmed)
	if err != nil || !armed {
		return store.Next{}, err
	}

	id, _, err := intField(s, FieldID)
	if err != nil {
		return store.Next{}, err
	}

	kind, _, err := stringField(s, FieldType)
	if err != nil {
		return store.Next{}, err
	}

	at, err := timeField(s, FieldTime)
	if err != nil {
		return store.Next{}, err
	}

	return store.Next{
		Entry: alarm.ScheduledEntry{
			ID:   id,
			Type: alarm.OccurrenceType(kind),
			Time: at,
		},
		Armed: true,
	}, nil
}

func intField(s *structpb.Struct, key string) (int, bool, error) {
	value, ok := s.GetFields()[key]
	if !ok {
		return 0, false, nil
	}

	number, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok || number.NumberValue != math.Trunc(number.NumberValue) {
		return 0, true, fmt.Errorf("%w: %s must be an integer", ErrInvalidField, key)
	}

	return int(number.NumberValue), true, nil
}

func stringField(s *structpb.Struct, key string) (string, bool, error) {
	value, ok := s.GetFields()[key]
	if !ok {
		return "", false, nil
	}

	str, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", true, fmt.Errorf("%w: %s must be a string", ErrInvalidField, key)
	}

	return str.StringValue, true, nil
}

func boolField(s *structpb.Struct, key string) (bool, bool, error) {
	value, ok := s.GetFields()[key]
	if !ok {
		return false, false, nil
	}

	flag, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, true, fmt.Errorf("%w: %s must be a boolean", ErrInvalidField, key)
	}

	return flag.BoolValue, true, nil
}

func timeField(s *structpb.Struct, key string) (time.Time, error) {
	str, ok, err := stringField(s, key)
	if err != nil || !ok {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrInvalidField, key, err)
	}

	return t, nil
}
