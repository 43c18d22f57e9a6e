// Package app wires the session store, TTL cache, access evaluator, gateway
// and navigation controller into one application facade. The view layer talks
// to this package and to the navigation hooks it registers; everything else
// stays internal.
package app

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jrsteele09/go-indicator-client/access"
	"github.com/jrsteele09/go-indicator-client/cache"
	"github.com/jrsteele09/go-indicator-client/gateway"
	"github.com/jrsteele09/go-indicator-client/indicators"
	"github.com/jrsteele09/go-indicator-client/internal/config"
	apperrors "github.com/jrsteele09/go-indicator-client/internal/errors"
	"github.com/jrsteele09/go-indicator-client/navigation"
	"github.com/jrsteele09/go-indicator-client/session"
	"github.com/jrsteele09/go-indicator-client/session/storage"
)

type App struct {
	config    config.Config
	cache     *cache.Store
	sessions  *session.Store
	evaluator *access.Evaluator
	gateway   *gateway.Gateway
	nav       *navigation.Controller

	mu         sync.RWMutex
	units      []indicators.Unit
	dictionary []indicators.Indicator
	adminUsers []indicators.AdminUser

	sampleUnits      []indicators.Unit
	sampleDictionary []indicators.Indicator
}

// AppOption defines a function type to modify the App instance.
type AppOption func(*App)

// WithSampleData enables an explicit development-only offline mode: when the
// initial reference-data load fails, these samples are used instead and a
// loud warning is logged. Never enabled by default; production wiring must
// not pass this option.
func WithSampleData(units []indicators.Unit, dictionary []indicators.Indicator) AppOption {
	return func(a *App) {
		a.sampleUnits = units
		a.sampleDictionary = dictionary
	}
}

// New initializes the application facade with required dependencies.
func New(cfg config.Config, storageRepo storage.Repo, notifier navigation.Notifier, options ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("[app.New] config is required")
	}

	cacheStore := cache.New()

	sessions, err := session.NewStore(storageRepo, cacheStore)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] session store")
	}

	evaluator, err := access.NewEvaluator(sessions)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] access evaluator")
	}

	gw, err := gateway.New(cfg.GetServiceBaseURL(), sessions, cacheStore, gateway.CacheTTLs{
		Profile:    cfg.GetProfileTTL(),
		Units:      cfg.GetUnitsTTL(),
		Dictionary: cfg.GetDictionaryTTL(),
		Entries:    cfg.GetEntriesTTL(),
	}, gateway.WithTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] gateway")
	}

	nav, err := navigation.NewController(evaluator, notifier)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] navigation controller")
	}

	a := &App{
		config:    cfg,
		cache:     cacheStore,
		sessions:  sessions,
		evaluator: evaluator,
		gateway:   gw,
		nav:       nav,
	}
	for _, opt := range options {
		opt(a)
	}

	if err := a.registerScreens(); err != nil {
		return nil, errors.Wrap(err, "[app.New] register screens")
	}
	return a, nil
}

// registerScreens binds each screen's lazy-initialization hook to its data
// loader. The view layer may toggle visibility through its own hooks later;
// the loaders here are the part the core owns.
func (a *App) registerScreens() error {
	screens := []navigation.Screen{
		{
			ID:      navigation.ScreenDashboard,
			MinRole: session.RoleOperator,
			OnEnter: a.ensureReferenceData,
		},
		{
			ID:      navigation.ScreenEntry,
			MinRole: session.RoleOperator,
			OnEnter: a.ensureReferenceData,
		},
		{
			ID:      navigation.ScreenAdminUnits,
			MinRole: session.RoleAdmin,
			OnEnter: a.loadUnits,
		},
		{
			ID:      navigation.ScreenAdminUsers,
			MinRole: session.RoleAdmin,
			OnEnter: a.loadAdminUsers,
		},
	}

	for _, screen := range screens {
		if err := a.nav.Register(screen); err != nil {
			return err
		}
	}
	return nil
}

// Navigation returns the controller so the view layer can register
// additional hooks and observe the active screen.
func (a *App) Navigation() *navigation.Controller { return a.nav }

// Access returns the evaluator the view layer uses for show/hide decisions.
func (a *App) Access() *access.Evaluator { return a.evaluator }

// Sessions exposes the session store (read side: Current, Token).
func (a *App) Sessions() *session.Store { return a.sessions }

// Gateway exposes the typed remote endpoints for callers that need direct
// access (e.g., health checks).
func (a *App) Gateway() *gateway.Gateway { return a.gateway }

// Start restores any persisted session and, when one exists, loads initial
// data and lands on the dashboard. Returns true when authenticated.
func (a *App) Start(ctx context.Context) (bool, error) {
	if a.sessions.Restore() == nil {
		log.Info().Msg("no persisted session, authentication required")
		return false, nil
	}

	if err := a.LoadInitialData(ctx); err != nil {
		if apperrors.Is(err, apperrors.ErrSessionExpired) {
			a.nav.Reset()
			return false, nil
		}
		return true, err
	}

	return true, a.nav.GoTo(ctx, navigation.ScreenDashboard)
}

// SignIn authenticates, adopts the returned identity, loads initial data and
// lands on the dashboard.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	result, err := a.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := a.sessions.Login(result.User, result.Token); err != nil {
		return errors.Wrap(err, "[App.SignIn] adopt session")
	}

	log.Info().Str("user", result.User.Email).Str("role", string(result.User.Role)).Msg("signed in")

	if err := a.LoadInitialData(ctx); err != nil {
		return err
	}
	return a.nav.GoTo(ctx, navigation.ScreenDashboard)
}

// SignUp registers a new operator account and signs it in when the remote
// returns a token with the registration response.
func (a *App) SignUp(ctx context.Context, registration indicators.Registration) error {
	result, err := a.gateway.Register(ctx, registration)
	if err != nil {
		return err
	}
	if result.Token == "" {
		log.Info().Str("email", registration.Email).Msg("registered, sign-in required")
		return nil
	}

	if err := a.sessions.Login(result.User, result.Token); err != nil {
		return errors.Wrap(err, "[App.SignUp] adopt session")
	}
	if err := a.LoadInitialData(ctx); err != nil {
		return err
	}
	return a.nav.GoTo(ctx, navigation.ScreenDashboard)
}

// SignOut retires the credential remotely on a best-effort basis, clears the
// local session (which clears the cache) and resets navigation. Any pending
// user input is simply dropped with the screens.
func (a *App) SignOut(ctx context.Context) error {
	if a.sessions.Current() != nil {
		if err := a.gateway.RemoteLogout(ctx); err != nil && !apperrors.Is(err, apperrors.ErrSessionExpired) {
			log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}

	if err := a.sessions.Logout(); err != nil {
		return errors.Wrap(err, "[App.SignOut] clear session")
	}
	a.nav.Reset()

	a.mu.Lock()
	a.units = nil
	a.dictionary = nil
	a.adminUsers = nil
	a.mu.Unlock()

	return nil
}

// LoadInitialData fetches the unit list and the indicator dictionary. Both
// fetches run concurrently and fail independently; an error on one does not
// cancel the other. Session expiry on either resets navigation.
func (a *App) LoadInitialData(ctx context.Context) error {
	if a.sessions.TokenExpiresWithin(a.config.GetTokenRefreshThreshold()) {
		log.Warn().Msg("bearer token close to expiry, re-authentication due soon")
	}

	var (
		g        errgroup.Group
		unitsErr error
		dictErr  error
	)

	g.Go(func() error {
		unitsErr = a.loadUnits(ctx)
		return nil
	})
	g.Go(func() error {
		dictErr = a.loadDictionary(ctx)
		return nil
	})
	_ = g.Wait()

	for _, err := range []error{unitsErr, dictErr} {
		if err == nil {
			continue
		}
		if apperrors.Is(err, apperrors.ErrSessionExpired) {
			a.nav.Reset()
			return err
		}
		log.Error().Err(err).Msg("initial data load failed")
	}

	if (unitsErr != nil || dictErr != nil) && a.sampleUnits != nil {
		log.Warn().Msg("OFFLINE SAMPLE DATA in use, development mode only")
		a.mu.Lock()
		if unitsErr != nil {
			a.units = a.sampleUnits
		}
		if dictErr != nil {
			a.dictionary = a.sampleDictionary
		}
		a.mu.Unlock()
		return nil
	}

	if unitsErr != nil {
		return unitsErr
	}
	return dictErr
}

// ConnectivityRestored drops every cached value and refetches, so the UI
// stops referencing data fetched before the outage.
func (a *App) ConnectivityRestored(ctx context.Context) error {
	log.Info().Msg("connectivity restored, refreshing data")
	a.cache.Clear()
	return a.LoadInitialData(ctx)
}

// Units returns the loaded unit list reference data.
func (a *App) Units() []indicators.Unit {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.units
}

// Dictionary returns the loaded indicator dictionary.
func (a *App) Dictionary() []indicators.Indicator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dictionary
}

// AdminUsers returns the user list loaded on entering the admin-users screen.
func (a *App) AdminUsers() []indicators.AdminUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.adminUsers
}

// EntryReport fetches the entry report for one unit and period, scoped to
// what the live identity may see.
func (a *App) EntryReport(ctx context.Context, filter indicators.EntryFilter) ([]indicators.Entry, error) {
	if a.sessions.Current() == nil {
		return nil, apperrors.ErrNoSession
	}
	if !a.evaluator.CanAccessUnit(filter.Unit) {
		return nil, apperrors.Wrapf(apperrors.ErrAccessDenied, "unit %q", filter.Unit)
	}

	entries, err := a.gateway.Entries(ctx, filter)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionExpired) {
			a.nav.Reset()
		}
		return nil, err
	}
	return access.FilterByUnit(a.evaluator, entries), nil
}

// SubmitBatch validates and submits one batched entry report. Failures are
// surfaced, never retried: a partially applied batch needs the user's
// confirmation before resubmission.
func (a *App) SubmitBatch(ctx context.Context, batch indicators.EntryBatch) (gateway.SubmitResult, error) {
	if a.sessions.Current() == nil {
		return gateway.SubmitResult{}, apperrors.ErrNoSession
	}
	if !a.evaluator.CanAccessUnit(batch.Unit) {
		return gateway.SubmitResult{}, apperrors.Wrapf(apperrors.ErrAccessDenied, "unit %q", batch.Unit)
	}

	result, err := a.gateway.SubmitEntries(ctx, batch)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionExpired) {
			a.nav.Reset()
		}
		return gateway.SubmitResult{}, err
	}
	return result, nil
}

func (a *App) ensureReferenceData(ctx context.Context) error {
	a.mu.RLock()
	loaded := a.units != nil && a.dictionary != nil
	a.mu.RUnlock()

	if loaded {
		return nil
	}
	return a.LoadInitialData(ctx)
}

func (a *App) loadUnits(ctx context.Context) error {
	units, err := a.gateway.Units(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.units = units
	a.mu.Unlock()
	return nil
}

func (a *App) loadDictionary(ctx context.Context) error {
	dictionary, err := a.gateway.Dictionary(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.dictionary = dictionary
	a.mu.Unlock()
	return nil
}

func (a *App) loadAdminUsers(ctx context.Context) error {
	users, err := a.gateway.AdminUsers(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.adminUsers = users
	a.mu.Unlock()
	return nil
}
