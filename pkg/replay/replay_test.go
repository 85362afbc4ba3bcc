package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"

	"rcdl/pkg/port"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

func writeCapture(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "capture.csv")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func collect(r *Reader) []port.Event {
	var events []port.Event
	for e := range r.C {
		events = append(events, e)
	}
	return events
}

func TestReplay(t *testing.T) {
	name := writeCapture(t, "sample,edge\n100,f\n4100,r\n12100,f\n")

	r, err := Open(name)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	events := collect(r)
	require.Len(t, events, 3)
	assert.Equal(t, port.Event{Sample: 100, Type: port.FallingEdge}, events[0])
	assert.Equal(t, port.Event{Sample: 4100, Type: port.RisingEdge}, events[1])
	assert.Equal(t, port.Event{Sample: 12100, Type: port.FallingEdge}, events[2])
}

func TestReplaySkipsBrokenLines(t *testing.T) {
	name := writeCapture(t, "100,f\nnot-a-sample,r\n200,x\n300,r\n")

	r, err := Open(name)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	events := collect(r)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(100), events[0].Sample)
	assert.Equal(t, uint64(300), events[1].Sample)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in      string
		want    port.Event
		wantErr bool
	}{
		{"10,r", port.Event{Sample: 10, Type: port.RisingEdge}, false},
		{" 10 , F ", port.Event{Sample: 10, Type: port.FallingEdge}, false},
		{"10", port.Event{}, true},
		{"a,r", port.Event{}, true},
		{"10,q", port.Event{}, true},
	}

	for _, tt := range tests {
		got, err := parseLine(tt.in)
		if tt.wantErr {
			assert.Errorf(t, err, "parseLine(%q)", tt.in)
			continue
		}
		require.NoErrorf(t, err, "parseLine(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
