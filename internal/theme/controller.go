package theme

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Indicator receives the toggle control's pressed state.
type Indicator interface {
	SetPressed(pressed bool)
}

// PressedState is an Indicator that keeps the last pressed state, for
// callers without a real toggle control.
type PressedState struct {
	pressed atomic.Bool
}

func (p *PressedState) SetPressed(pressed bool) { p.pressed.Store(pressed) }

// Pressed reports the last state set.
func (p *PressedState) Pressed() bool { return p.pressed.Load() }

// RenderFunc re-renders every chart under t.
type RenderFunc func(ctx context.Context, t Theme) error

// Option configures a Controller.
type Option func(*Controller)

// WithIndicator attaches the toggle control.
func WithIndicator(ind Indicator) Option {
	return func(c *Controller) { c.indicator = ind }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is the two-state theme toggle. Each toggle persists the new
// theme, updates the indicator and runs one full re-render. Render passes
// never overlap: a pass requested while another runs waits for it, and
// requests that pile up behind a running pass share a single follow-up pass
// that renders the newest theme.
type Controller struct {
	store     Store
	render    RenderFunc
	indicator Indicator
	logger    *zap.Logger

	mu      sync.Mutex
	current Theme

	renderMu sync.Mutex
	pending  singleflight.Group
}

// NewController creates a controller starting in the dark theme; call Load
// to pick up the persisted value.
func NewController(store Store, render RenderFunc, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		render:  render,
		logger:  zap.NewNop(),
		current: Dark,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the persisted theme and syncs the indicator.
func (c *Controller) Load() (Theme, error) {
	t, err := Current(c.store)
	if err != nil {
		return Dark, fmt.Errorf("failed to load theme: %w", err)
	}

	c.mu.Lock()
	c.current = t
	c.syncIndicator()
	c.mu.Unlock()

	c.logger.Debug("Theme loaded", zap.String("theme", t.String()))
	return t, nil
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Toggle flips the theme, persists it and re-renders everything. The new
// theme is returned even when the re-render fails.
func (c *Controller) Toggle(ctx context.Context) (Theme, error) {
	c.mu.Lock()
	next := c.current.Flip()
	if err := c.store.Save(next.String()); err != nil {
		c.mu.Unlock()
		return c.Theme(), fmt.Errorf("failed to persist theme: %w", err)
	}
	c.current = next
	c.syncIndicator()
	c.mu.Unlock()

	c.logger.Info("Theme toggled", zap.String("theme", next.String()))
	return next, c.Rerender(ctx)
}

// Rerender runs a full render pass under the current theme. A pass is shared
// by every caller that joined it, so it runs detached from the cancellation
// of whichever caller started it; each caller still stops waiting when its
// own ctx is done.
func (c *Controller) Rerender(ctx context.Context) error {
	if c.render == nil {
		return nil
	}
	passCtx := context.WithoutCancel(ctx)
	ch := c.pending.DoChan("pass", func() (any, error) {
		c.renderMu.Lock()
		defer c.renderMu.Unlock()
		// Requests from here on queue behind this pass.
		c.pending.Forget("pass")
		return nil, c.render(passCtx, c.Theme())
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// syncIndicator must be called with mu held.
func (c *Controller) syncIndicator() {
	if c.indicator != nil {
		c.indicator.SetPressed(c.current.Pressed())
	}
}
