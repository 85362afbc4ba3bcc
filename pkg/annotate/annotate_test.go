package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcdl/pkg/jrc"
)

func TestRecorderKeepsLast(t *testing.T) {
	r := NewRecorder(3)

	for i := uint64(0); i < 5; i++ {
		r.Put(i, i+1, jrc.Bit, []string{"1"})
	}

	s := r.Snapshot()
	require.Len(t, s, 3)
	assert.Equal(t, uint64(2), s[0].Start)
	assert.Equal(t, uint64(4), s[2].Start)
}

func TestRecorderSnapshotIsCopy(t *testing.T) {
	r := NewRecorder(4)
	r.Put(1, 2, jrc.Preamble, []string{"Preamble", "P"})

	s := r.Snapshot()
	require.Len(t, s, 1)

	r.Put(3, 4, jrc.Start, []string{"S"})
	assert.Len(t, s, 1)
	assert.Len(t, r.Snapshot(), 2)
}

func TestMultiFansOut(t *testing.T) {
	a := NewRecorder(8)
	b := NewRecorder(8)

	m := Multi{a, b}
	m.Put(10, 20, jrc.Data, []string{"Data[0-3]", "D"})

	require.Len(t, a.Snapshot(), 1)
	require.Len(t, b.Snapshot(), 1)
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}
