package theme

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pressedRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (p *pressedRecorder) SetPressed(pressed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, pressed)
}

func (p *pressedRecorder) last() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[len(p.states)-1]
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Save(string) error { return errors.New("disk full") }

func TestToggleTwiceRestoresFlag(t *testing.T) {
	store := NewMemoryStore("")
	var passes []Theme
	render := func(_ context.Context, th Theme) error {
		passes = append(passes, th)
		return nil
	}
	ind := &pressedRecorder{}
	c := NewController(store, render, WithIndicator(ind))

	start, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, Dark, start)
	assert.False(t, ind.last())

	next, err := c.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Light, next)
	assert.True(t, ind.last())
	v, _, _ := store.Load()
	assert.Equal(t, "light", v)

	next, err = c.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Dark, next)
	assert.False(t, ind.last())

	v, _, _ = store.Load()
	assert.Equal(t, "dark", v)
	assert.Equal(t, start, mustCurrent(t, store))
	assert.Equal(t, []Theme{Light, Dark}, passes, "one full pass per toggle")
}

func mustCurrent(t *testing.T, s Store) Theme {
	t.Helper()
	th, err := Current(s)
	require.NoError(t, err)
	return th
}

func TestLoadPersistedLight(t *testing.T) {
	ind := &pressedRecorder{}
	c := NewController(NewMemoryStore("light"), nil, WithIndicator(ind))

	th, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, Light, th)
	assert.True(t, ind.last())
}

func TestToggleRenderFailureKeepsTheme(t *testing.T) {
	c := NewController(NewMemoryStore(""), func(context.Context, Theme) error {
		return errors.New("boom")
	})
	th, err := c.Toggle(context.Background())
	assert.EqualError(t, err, "boom")
	assert.Equal(t, Light, th)
	assert.Equal(t, Light, c.Theme())
}

func TestTogglePersistFailure(t *testing.T) {
	rendered := false
	c := NewController(&failingStore{}, func(context.Context, Theme) error {
		rendered = true
		return nil
	})
	th, err := c.Toggle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Dark, th)
	assert.False(t, rendered)
}

func TestConcurrentTogglesNeverOverlap(t *testing.T) {
	var inFlight, maxInFlight, passes int32
	render := func(_ context.Context, _ Theme) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&passes, 1)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}
	store := NewMemoryStore("")
	c := NewController(store, render)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Toggle(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&passes), int32(1))
	assert.LessOrEqual(t, atomic.LoadInt32(&passes), int32(8))

	// Eight flips from dark land back on dark.
	assert.Equal(t, Dark, c.Theme())
	assert.Equal(t, Dark, mustCurrent(t, store))
}

func TestLastPassRendersNewestTheme(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []Theme
	first := true
	render := func(_ context.Context, th Theme) error {
		mu.Lock()
		seen = append(seen, th)
		block := first
		first = false
		mu.Unlock()
		if block {
			<-release
		}
		return nil
	}
	c := NewController(NewMemoryStore(""), render)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Toggle(context.Background())
	}()

	// Wait until the first pass is running.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.Toggle(context.Background())
	}()
	require.Eventually(t, func() bool { return c.Theme() == Dark }, time.Second, time.Millisecond)

	close(release)
	<-done
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, Light, seen[0])
	assert.Equal(t, Dark, seen[len(seen)-1])
}

func TestRerenderOutlivesCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	passErr := make(chan error, 1)
	c := NewController(NewMemoryStore(""), func(ctx context.Context, _ Theme) error {
		close(started)
		<-release
		passErr <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Rerender(ctx) }()

	<-started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.NoError(t, <-passErr, "the shared pass keeps running")
}

func TestPressedState(t *testing.T) {
	ind := &PressedState{}
	c := NewController(NewMemoryStore(""), nil, WithIndicator(ind))
	_, err := c.Load()
	require.NoError(t, err)
	assert.False(t, ind.Pressed())

	_, err = c.Toggle(context.Background())
	require.NoError(t, err)
	assert.True(t, ind.Pressed())
}
