package countup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEaseOutQuart(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutQuart(0))
	assert.Equal(t, 1.0, EaseOutQuart(1))
	assert.InDelta(t, 0.9375, EaseOutQuart(0.5), 1e-9)
}

func TestFrame(t *testing.T) {
	const duration = 1000 * time.Millisecond

	t.Run("completion snaps to target", func(t *testing.T) {
		v, done := Frame(100, duration, 0, duration)
		assert.True(t, done)
		assert.Equal(t, int64(100), v)

		v, done = Frame(100, 5*duration, 0, duration)
		assert.True(t, done)
		assert.Equal(t, int64(100), v)
	})

	t.Run("never overshoots", func(t *testing.T) {
		for ms := 0; ms <= 1000; ms += 16 {
			v, _ := Frame(100, time.Duration(ms)*time.Millisecond, 0, duration)
			assert.LessOrEqual(t, v, int64(100))
			assert.GreaterOrEqual(t, v, int64(0))
		}
	})

	t.Run("monotonic", func(t *testing.T) {
		var last int64
		for ms := 0; ms <= 1000; ms += 7 {
			v, _ := Frame(1000, time.Duration(ms)*time.Millisecond, 0, duration)
			assert.GreaterOrEqual(t, v, last)
			last = v
		}
	})

	t.Run("halfway is floored", func(t *testing.T) {
		v, done := Frame(100, 500*time.Millisecond, 0, duration)
		assert.False(t, done)
		assert.Equal(t, int64(93), v)
	})

	t.Run("delay holds at zero", func(t *testing.T) {
		v, done := Frame(100, 200*time.Millisecond, 300*time.Millisecond, duration)
		assert.False(t, done)
		assert.Equal(t, int64(0), v)
	})

	t.Run("zero duration completes immediately", func(t *testing.T) {
		v, done := Frame(42, 0, 0, 0)
		assert.True(t, done)
		assert.Equal(t, int64(42), v)
	})
}

func TestAnimator_ReachesTarget(t *testing.T) {
	a := New(WithDuration(40*time.Millisecond), WithInterval(2*time.Millisecond))
	defer a.Stop()

	assert.Equal(t, State{}, a.State())

	a.Trigger(250)
	require.Eventually(t, func() bool { return a.State().Done }, time.Second, 5*time.Millisecond)

	s := a.State()
	assert.Equal(t, int64(250), s.Value)
	assert.False(t, s.Formatted)
}

func TestAnimator_MillionViewsFormats(t *testing.T) {
	a := New(
		WithDuration(10*time.Millisecond),
		WithInterval(2*time.Millisecond),
		WithMillionViews(true),
	)
	defer a.Stop()

	a.Trigger(1_000_000)
	require.Eventually(t, func() bool { return a.State().Done }, time.Second, 5*time.Millisecond)
	assert.False(t, a.State().Formatted)

	require.Eventually(t, func() bool { return a.State().Formatted }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "1M+", Display(a.State().Value, "", true))
}

func TestAnimator_RetriggerRestartsFromZero(t *testing.T) {
	var mu sync.Mutex
	var seen []State

	a := New(
		WithDuration(time.Hour),
		WithInterval(time.Millisecond),
		OnUpdate(func(s State) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}),
	)
	defer a.Stop()

	a.Trigger(1_000_000_000)
	require.Eventually(t, func() bool { return a.State().Value > 0 }, time.Second, time.Millisecond)

	a.Trigger(10)
	s := a.State()
	assert.Equal(t, int64(10), s.Target)
	assert.LessOrEqual(t, s.Value, int64(10))

	// Every update after the retrigger belongs to the new target.
	mu.Lock()
	var idx int
	for i, st := range seen {
		if st.Target == 10 {
			idx = i
			break
		}
	}
	after := append([]State(nil), seen[idx:]...)
	mu.Unlock()

	for _, st := range after {
		assert.Equal(t, int64(10), st.Target)
	}
}

func TestAnimator_ResetAndStop(t *testing.T) {
	a := New(WithDuration(time.Hour), WithInterval(time.Millisecond))

	a.Trigger(1_000_000)
	require.Eventually(t, func() bool { return a.State().Value > 0 }, time.Second, time.Millisecond)

	a.Reset()
	assert.Equal(t, State{}, a.State())

	a.Trigger(5)
	a.Stop()
	a.Stop()
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "1,234+", Display(1234, "+", false))
	assert.Equal(t, "0", Display(0, "", false))
	assert.Equal(t, "1M+", Display(1_000_000, "", true))
}

func TestAbbreviate(t *testing.T) {
	tests := map[int64]string{
		0:             "0",
		999:           "999",
		1_000:         "1K",
		1_500:         "1.5K",
		1_000_000:     "1M",
		2_340_000:     "2.3M",
		1_000_000_000: "1B",
		-1_500:        "-1.5K",
	}
	for n, want := range tests {
		assert.Equal(t, want, Abbreviate(n), "Abbreviate(%d)", n)
	}
}
