package samplering

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAppendThenPopleftRoundTrips(t *testing.T) {
	r, err := New[float32](16, true)
	require.NoError(t, err)

	x := []float32{1, 2, 3, 4, 5}
	require.NoError(t, r.Append(x))

	y := make([]float32, len(x))
	ok, err := r.Popleft(y, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, x, y)
}

func TestWrapScenario(t *testing.T) {
	// Scenario 3 from spec §8: capacity 8, append [1,2,3,4], append
	// [5,6,7,8], popleft 4 -> [1,2,3,4]; append [1,1,1,1] -> backing
	// [1,1,1,1,5,6,7,8], occupancy 8.
	r, err := New[float32](8, true)
	require.NoError(t, err)

	require.NoError(t, r.Append([]float32{1, 2, 3, 4}))
	require.NoError(t, r.Append([]float32{5, 6, 7, 8}))

	dst := make([]float32, 4)
	ok, err := r.Popleft(dst, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []float32{1, 2, 3, 4}, dst)

	require.NoError(t, r.Append([]float32{1, 1, 1, 1}))
	require.Equal(t, []float32{1, 1, 1, 1, 5, 6, 7, 8}, r.Data())
	require.Equal(t, 8, r.Occupancy())
}

func TestLossyOverflowResetsAndWrites(t *testing.T) {
	// Scenario 4 from spec §8: capacity 8, append [1..8], append [9,10]
	// with allow_overflow=true -> occupancy 2, tail 0, head 2, backing
	// begins 9,10,...
	r, err := New[float32](8, true)
	require.NoError(t, err)

	require.NoError(t, r.Append([]float32{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, r.Append([]float32{9, 10}))

	require.Equal(t, 2, r.Occupancy())
	require.Equal(t, float32(9), r.Data()[0])
	require.Equal(t, float32(10), r.Data()[1])
}

func TestAppendFailsWhenLargerThanCapacity(t *testing.T) {
	r, err := New[float32](4, true)
	require.NoError(t, err)
	err = r.Append(make([]float32, 5))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestAppendFailsHardWhenOverflowDisallowed(t *testing.T) {
	r, err := New[float32](4, false)
	require.NoError(t, err)
	require.NoError(t, r.Append([]float32{1, 2, 3}))
	err = r.Append([]float32{4, 5})
	require.Error(t, err)
	// State left unchanged on the hard failure.
	require.Equal(t, 3, r.Occupancy())
}

func TestPopleftTimesOutWithoutData(t *testing.T) {
	r, err := New[float32](4, true)
	require.NoError(t, err)

	start := time.Now()
	dst := make([]float32, 2)
	ok, err := r.Popleft(dst, 30*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Equal(t, 0, r.Occupancy())
}

func TestPopleftBlocksUntilAppend(t *testing.T) {
	r, err := New[float32](8, true)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var ok bool
	dst := make([]float32, 4)
	go func() {
		defer wg.Done()
		ok, _ = r.Popleft(dst, 2*time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, r.Append([]float32{1, 2, 3, 4}))
	wg.Wait()

	require.True(t, ok)
	require.Equal(t, []float32{1, 2, 3, 4}, dst)
}

func TestPopleftFailsWhenLargerThanCapacity(t *testing.T) {
	r, err := New[float32](4, true)
	require.NoError(t, err)
	_, err = r.Popleft(make([]float32, 5), time.Millisecond)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestComplexSampleRingRoundTrip(t *testing.T) {
	r, err := New[complex64](4, true)
	require.NoError(t, err)
	x := []complex64{complex(1, 1), complex(2, -2)}
	require.NoError(t, r.Append(x))
	y := make([]complex64, 2)
	ok, err := r.Popleft(y, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, x, y)
}
