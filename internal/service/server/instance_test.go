package server

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

func processes(list ...ps.Process) processLister {
	return func() ([]ps.Process, error) { return list, nil }
}

// TestFindOtherInstance covers the single-instance guard.
func TestFindOtherInstance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		list    processLister
		wantErr error
	}{
		{
			name: "only self",
			list: processes(fakeProcess{pid: 10, executable: "alarm-clockd"}),
		},
		{
			name: "other executables",
			list: processes(
				fakeProcess{pid: 10, executable: "alarm-clockd"},
				fakeProcess{pid: 11, executable: "alarm-clock"},
			),
		},
		{
			name: "second daemon",
			list: processes(
				fakeProcess{pid: 10, executable: "alarm-clockd"},
				fakeProcess{pid: 12, executable: "alarm-clockd"},
			),
			wantErr: errAlreadyRunning,
		},
		{
			name: "listing fails",
			list: func() ([]ps.Process, error) {
				return nil, errors.New("denied")
			},
			wantErr: errors.New("list processes: denied"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := findOtherInstance(tt.list, "alarm-clockd", 10)

			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.wantErr, errAlreadyRunning):
				require.ErrorIs(t, err, errAlreadyRunning)
			default:
				require.EqualError(t, err, tt.wantErr.Error())
			}
		})
	}
}
