// Package navigation tracks the active screen and drives each screen's
// lazy initialization. Transitions are the only mutation path for the active
// screen, and every transition is gated by the access evaluator.
package navigation

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-indicator-client/access"
	apperrors "github.com/jrsteele09/go-indicator-client/internal/errors"
	"github.com/jrsteele09/go-indicator-client/session"
)

type ScreenID string

const (
	// ScreenNone is the implicit state before the first navigation and after
	// a session reset; it is not a registrable screen.
	ScreenNone ScreenID = ""

	ScreenDashboard  ScreenID = "dashboard"
	ScreenEntry      ScreenID = "entry"
	ScreenAdminUnits ScreenID = "adminUnits"
	ScreenAdminUsers ScreenID = "adminUsers"
)

// DefaultScreen is where refused transitions are redirected.
const DefaultScreen = ScreenDashboard

// Screen is one registrable view. OnEnter is the integration point with the
// view layer: the controller only guarantees ordering (deactivate old,
// activate new, then hook) and at-most-one invocation per entry.
type Screen struct {
	ID      ScreenID
	MinRole session.Role
	OnEnter func(ctx context.Context) error

	// Activate/Deactivate toggle the screen's visible state; either may be
	// nil when the embedding view has nothing to toggle.
	Activate   func()
	Deactivate func()
}

// Notifier receives user-visible notices (e.g., access-denied messages).
type Notifier interface {
	Notify(message string)
}

// Controller is the screen state machine. It never terminates: the machine
// cycles among screens for the life of the session and Reset returns it to
// the unauthenticated ScreenNone state.
type Controller struct {
	evaluator *access.Evaluator
	notifier  Notifier
	screens   map[ScreenID]Screen
	current   ScreenID
}

func NewController(evaluator *access.Evaluator, notifier Notifier) (*Controller, error) {
	if evaluator == nil {
		return nil, errors.New("[NewController] access evaluator is required")
	}
	if notifier == nil {
		return nil, errors.New("[NewController] notifier is required")
	}
	return &Controller{
		evaluator: evaluator,
		notifier:  notifier,
		screens:   make(map[ScreenID]Screen),
		current:   ScreenNone,
	}, nil
}

// Register adds a screen to the machine. Screens register once at startup;
// re-registration replaces the previous hooks.
func (c *Controller) Register(screen Screen) error {
	if screen.ID == ScreenNone {
		return errors.New("[Controller.Register] screen ID is required")
	}
	if screen.OnEnter == nil {
		return errors.New("[Controller.Register] OnEnter hook is required")
	}
	c.screens[screen.ID] = screen
	return nil
}

// Current returns the active screen, ScreenNone before first navigation.
func (c *Controller) Current() ScreenID {
	return c.current
}

// GoTo transitions to the target screen. A target the current identity's
// role does not satisfy is refused: the user gets a notice and is redirected
// to the default screen instead; the refusal itself never propagates.
// Navigating to the already-active screen is a no-op. A failing OnEnter hook
// rolls the transition back, leaving the previous screen active.
func (c *Controller) GoTo(ctx context.Context, id ScreenID) error {
	target, ok := c.screens[id]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrUnknownScreen, "%q", id)
	}

	if !c.evaluator.HasRole(target.MinRole) {
		log.Info().Str("screen", string(id)).Msg("navigation refused")
		c.notifier.Notify("You do not have access to that screen.")
		if id == DefaultScreen || c.current == DefaultScreen {
			return nil
		}
		return c.GoTo(ctx, DefaultScreen)
	}

	if id == c.current {
		return nil
	}

	previousID := c.current
	previous, hasPrevious := c.screens[previousID]
	if hasPrevious && previous.Deactivate != nil {
		previous.Deactivate()
	}
	if target.Activate != nil {
		target.Activate()
	}

	c.current = id
	log.Debug().Str("screen", string(id)).Msg("navigated")

	if err := target.OnEnter(ctx); err != nil {
		// A failed entry rolls the transition back, so retrying the same
		// target re-runs the hook instead of hitting the no-op path.
		if target.Deactivate != nil {
			target.Deactivate()
		}
		if hasPrevious && previous.Activate != nil {
			previous.Activate()
		}
		c.current = previousID
		return errors.Wrapf(err, "[Controller.GoTo] entering %q", id)
	}
	return nil
}

// Reset forces the machine back to the unauthenticated state outside the
// screen set. Called on logout.
func (c *Controller) Reset() {
	if previous, ok := c.screens[c.current]; ok && previous.Deactivate != nil {
		previous.Deactivate()
	}
	c.current = ScreenNone
}
