package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-indicator-client/access"
	apperrors "github.com/jrsteele09/go-indicator-client/internal/errors"
	"github.com/jrsteele09/go-indicator-client/navigation"
	"github.com/jrsteele09/go-indicator-client/session"
)

type fixedIdentity struct {
	identity *session.Identity
}

func (f *fixedIdentity) Current() *session.Identity { return f.identity }

type recordingNotifier struct {
	notices []string
}

func (n *recordingNotifier) Notify(message string) {
	n.notices = append(n.notices, message)
}

// testFixture holds all test dependencies
type testFixture struct {
	identity   *fixedIdentity
	notifier   *recordingNotifier
	controller *navigation.Controller
	entries    map[navigation.ScreenID]int
	active     map[navigation.ScreenID]bool
}

func setupTestFixture(t *testing.T, role session.Role) *testFixture {
	t.Helper()

	identity := &fixedIdentity{identity: &session.Identity{Role: role, Unit: "ICU"}}
	evaluator, err := access.NewEvaluator(identity)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	controller, err := navigation.NewController(evaluator, notifier)
	require.NoError(t, err)

	f := &testFixture{
		identity:   identity,
		notifier:   notifier,
		controller: controller,
		entries:    make(map[navigation.ScreenID]int),
		active:     make(map[navigation.ScreenID]bool),
	}

	register := func(id navigation.ScreenID, minRole session.Role) {
		require.NoError(t, controller.Register(navigation.Screen{
			ID:         id,
			MinRole:    minRole,
			OnEnter:    func(context.Context) error { f.entries[id]++; return nil },
			Activate:   func() { f.active[id] = true },
			Deactivate: func() { f.active[id] = false },
		}))
	}

	register(navigation.ScreenDashboard, session.RoleOperator)
	register(navigation.ScreenEntry, session.RoleOperator)
	register(navigation.ScreenAdminUnits, session.RoleAdmin)
	register(navigation.ScreenAdminUsers, session.RoleAdmin)

	return f
}

func TestController_StartsAtNone(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)
	require.Equal(t, navigation.ScreenNone, f.controller.Current())
}

func TestController_GoTo(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)
	ctx := context.Background()

	require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))
	require.Equal(t, navigation.ScreenDashboard, f.controller.Current())
	require.True(t, f.active[navigation.ScreenDashboard])
	require.Equal(t, 1, f.entries[navigation.ScreenDashboard])

	t.Run("re-invoking while active is a no-op", func(t *testing.T) {
		require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))
		require.Equal(t, 1, f.entries[navigation.ScreenDashboard])
	})

	t.Run("transition deactivates old and activates new", func(t *testing.T) {
		require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenEntry))
		require.False(t, f.active[navigation.ScreenDashboard])
		require.True(t, f.active[navigation.ScreenEntry])
		require.Equal(t, 1, f.entries[navigation.ScreenEntry])
	})

	t.Run("re-entering re-invokes the hook", func(t *testing.T) {
		require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))
		require.Equal(t, 2, f.entries[navigation.ScreenDashboard])
	})
}

func TestController_AccessDenied(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)
	ctx := context.Background()

	err := f.controller.GoTo(ctx, navigation.ScreenAdminUsers)
	require.NoError(t, err, "refusal is handled locally and must not propagate")

	require.Equal(t, navigation.ScreenDashboard, f.controller.Current())
	require.Equal(t, 0, f.entries[navigation.ScreenAdminUsers])
	require.Len(t, f.notifier.notices, 1)

	t.Run("denied while already on dashboard stays put", func(t *testing.T) {
		err := f.controller.GoTo(ctx, navigation.ScreenAdminUnits)
		require.NoError(t, err)
		require.Equal(t, navigation.ScreenDashboard, f.controller.Current())
		require.Equal(t, 1, f.entries[navigation.ScreenDashboard])
	})
}

func TestController_AdminAccess(t *testing.T) {
	f := setupTestFixture(t, session.RoleAdmin)
	ctx := context.Background()

	require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenAdminUsers))
	require.Equal(t, navigation.ScreenAdminUsers, f.controller.Current())
	require.Empty(t, f.notifier.notices)
}

func TestController_NoSessionDeniesEverything(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)
	f.identity.identity = nil
	ctx := context.Background()

	// Even the default screen requires an identity; the controller notifies
	// and leaves the machine at ScreenNone.
	require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))
	require.Equal(t, navigation.ScreenNone, f.controller.Current())
	require.NotEmpty(t, f.notifier.notices)
}

func TestController_FailedEntryRollsBack(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)
	ctx := context.Background()
	require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))

	// A loader that fails on its first invocation, as a transient network
	// error would.
	attempts := 0
	require.NoError(t, f.controller.Register(navigation.Screen{
		ID:      navigation.ScreenEntry,
		MinRole: session.RoleOperator,
		OnEnter: func(context.Context) error {
			attempts++
			if attempts == 1 {
				return errors.New("network unavailable")
			}
			return nil
		},
		Activate:   func() { f.active[navigation.ScreenEntry] = true },
		Deactivate: func() { f.active[navigation.ScreenEntry] = false },
	}))

	require.Error(t, f.controller.GoTo(ctx, navigation.ScreenEntry))
	require.Equal(t, navigation.ScreenDashboard, f.controller.Current())
	require.True(t, f.active[navigation.ScreenDashboard])
	require.False(t, f.active[navigation.ScreenEntry])

	t.Run("retrying the same screen re-runs the hook", func(t *testing.T) {
		require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenEntry))
		require.Equal(t, navigation.ScreenEntry, f.controller.Current())
		require.Equal(t, 2, attempts)
	})
}

func TestController_UnknownScreen(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)

	err := f.controller.GoTo(context.Background(), navigation.ScreenID("settings"))
	require.ErrorIs(t, err, apperrors.ErrUnknownScreen)
}

func TestController_Reset(t *testing.T) {
	f := setupTestFixture(t, session.RoleOperator)
	ctx := context.Background()

	require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))
	f.controller.Reset()

	require.Equal(t, navigation.ScreenNone, f.controller.Current())
	require.False(t, f.active[navigation.ScreenDashboard])

	t.Run("navigating after reset re-enters", func(t *testing.T) {
		require.NoError(t, f.controller.GoTo(ctx, navigation.ScreenDashboard))
		require.Equal(t, 2, f.entries[navigation.ScreenDashboard])
	})
}
