package alarms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// File keeps the alarm set as one YAML document.
type File struct {
	// fs is the filesystem holding the document.
	fs afero.Fs
	// path is the location of the YAML document.
	path string
	// mu serializes read-modify-write cycles.
	mu sync.Mutex
}

// document is the on-disk layout.
type document struct {
	// LastID is the highest id ever saved.
	LastID int `yaml:"last_id"`
	// Alarms are the stored records ordered by id.
	Alarms []record `yaml:"alarms"`
}

// record is the YAML form of alarm.Value.
type record struct {
	ID                int       `yaml:"id"`
	Hour              int       `yaml:"hour"`
	Minute            int       `yaml:"minute"`
	Days              string    `yaml:"days"`
	IsEnabled         bool      `yaml:"enabled"`
	IsPrealarmEnabled bool      `yaml:"prealarm"`
	Label             string    `yaml:"label,omitempty"`
	Vibrate           bool      `yaml:"vibrate"`
	State             string    `yaml:"state"`
	AlarmTime         time.Time `yaml:"alarm_time,omitempty"`
	OccurrenceType    string    `yaml:"occurrence_type,omitempty"`
	OccurrenceTime    time.Time `yaml:"occurrence_time,omitempty"`
}

// NewFile creates a repository that reads and writes YAML at path on fs.
func NewFile(fs afero.Fs, path string) *File {
	return &File{
		fs:   fs,
		path: filepath.Clean(path),
	}
}

// Query returns every stored alarm. A missing file is an empty set.
func (r *File) Query(_ context.Context) ([]alarm.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	result := make([]alarm.Value, 0, len(doc.Alarms))

	for _, rec := range doc.Alarms {
		v, err := rec.value()
		if err != nil {
			return nil, fmt.Errorf("decode alarm %d: %w", rec.ID, err)
		}

		result = append(result, v)
	}

	return result, nil
}

// Save merges the batch into the stored document and rewrites it.
func (r *File) Save(_ context.Context, changed []alarm.Value, removed []int) error {
	if len(changed) == 0 && len(removed) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.load()
	if err != nil {
		return err
	}

	byID := make(map[int]record, len(stored.Alarms)+len(changed))
	for _, rec := range stored.Alarms {
		byID[rec.ID] = rec
	}

	doc := document{
		LastID: stored.LastID,
	}

	for _, v := range changed {
		byID[v.ID] = recordOf(v)
		doc.LastID = max(doc.LastID, v.ID)
	}

	for _, id := range removed {
		delete(byID, id)
	}

	doc.Alarms = make([]record, 0, len(byID))

	for _, rec := range byID {
		doc.Alarms = append(doc.Alarms, rec)
	}

	slices.SortFunc(doc.Alarms, func(a, b record) int {
		return a.ID - b.ID
	})

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = afero.WriteFile(r.fs, tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarms file: %w", err)
	}

	if err = r.fs.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace alarms file: %w", err)
	}

	return nil
}

// LastID returns the highest id ever saved, including deleted alarms.
func (r *File) LastID(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return 0, err
	}

	return doc.LastID, nil
}

// Close is a no-op.
func (r *File) Close() error {
	return nil
}

func (r *File) load() (document, error) {
	var doc document

	contents, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}

		return doc, fmt.Errorf("read alarms file: %w", err)
	}

	if err = yaml.Unmarshal(contents, &doc); err != nil {
		return doc, fmt.Errorf("decode alarms file: %w", err)
	}

	return doc, nil
}

func recordOf(v alarm.Value) record {
	return record{
		ID:                v.ID,
		Hour:              v.Hour,
		Minute:            v.Minute,
		Days:              v.DaysOfWeek.String(),
		IsEnabled:         v.IsEnabled,
		IsPrealarmEnabled: v.IsPrealarmEnabled,
		Label:             v.Label,
		Vibrate:           v.Vibrate,
		State:             string(v.State),
		AlarmTime:         v.AlarmTime,
		OccurrenceType:    string(v.OccurrenceType),
		OccurrenceTime:    v.OccurrenceTime,
	}
}

func (rec record) value() (alarm.Value, error) {
	days, err := alarm.ParseDaysOfWeek(rec.Days)
	if err != nil {
		return alarm.Value{}, err
	}

	return alarm.Value{
		ID:                rec.ID,
		Hour:              rec.Hour,
		Minute:            rec.Minute,
		DaysOfWeek:        days,
		IsEnabled:         rec.IsEnabled,
		IsPrealarmEnabled: rec.IsPrealarmEnabled,
		Label:             rec.Label,
		Vibrate:           rec.Vibrate,
		State:             alarm.State(rec.State),
		AlarmTime:         rec.AlarmTime,
		OccurrenceType:    alarm.OccurrenceType(rec.OccurrenceType),
		OccurrenceTime:    rec.OccurrenceTime,
	}, nil
}
