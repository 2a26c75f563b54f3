package slotring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFO(t *testing.T) {
	r, err := New[float32](3, 1)
	require.NoError(t, err)

	for _, v := range []float32{1, 2, 3} {
		s := r.Enqueue()
		s.View[0] = v
		s.Release()
	}

	for _, want := range []float32{1, 2, 3} {
		s, err := r.Dequeue()
		require.NoError(t, err)
		require.Equal(t, want, s.View[0])
		s.Release()
	}

	require.Equal(t, 0, r.Occupancy())
	require.Equal(t, 0, r.Overflows())
}

func TestOverflowDropsOldest(t *testing.T) {
	r, err := New[float32](3, 1)
	require.NoError(t, err)

	for _, v := range []float32{1, 2, 3, 4} {
		s := r.Enqueue()
		s.View[0] = v
		s.Release()
	}

	var got []float32
	for i := 0; i < 3; i++ {
		s, err := r.Dequeue()
		require.NoError(t, err)
		got = append(got, s.View[0])
		s.Release()
	}

	require.Equal(t, []float32{2, 3, 4}, got)
	require.Equal(t, 1, r.Overflows())
}

func TestDequeueOnEmptyFails(t *testing.T) {
	r, err := New[float32](2, 1)
	require.NoError(t, err)
	_, err = r.Dequeue()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestIsHealthy(t *testing.T) {
	r, err := New[float32](2, 1)
	require.NoError(t, err)
	require.False(t, r.IsHealthy())
	r.Enqueue().Release()
	require.True(t, r.IsHealthy())
}

func TestResetClearsState(t *testing.T) {
	r, err := New[float32](2, 1)
	require.NoError(t, err)
	r.Enqueue().Release()
	r.Enqueue().Release()
	r.Enqueue().Release() // overflow
	r.Reset()
	require.Equal(t, 0, r.Occupancy())
	require.Equal(t, 0, r.Overflows())
	require.Equal(t, 2, r.Capacity())
}

func TestInvariantBounds(t *testing.T) {
	r, err := New[float32](4, 1)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		r.Enqueue().Release()
		require.GreaterOrEqual(t, r.Occupancy(), 0)
		require.LessOrEqual(t, r.Occupancy(), r.Capacity())
	}
	for r.Occupancy() > 0 {
		s, err := r.Dequeue()
		require.NoError(t, err)
		s.Release()
	}
	require.Equal(t, 6, r.Overflows())
}
