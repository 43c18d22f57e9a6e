package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/jrsteele09/go-indicator-client/indicators"
	apperrors "github.com/jrsteele09/go-indicator-client/internal/errors"
	"github.com/jrsteele09/go-indicator-client/session"
)

// Cache keys owned by the gateway. Entry reports are cached per unit and
// period under the shared prefix so one submission can invalidate them all.
const (
	cacheKeyProfile       = "profile"
	cacheKeyUnits         = "units"
	cacheKeyDictionary    = "indicator_dictionary"
	cacheKeyEntriesPrefix = "entries:"
)

var photoURLPattern = regexp.MustCompile(`^https?://.+\..+`)

// LoginResult is the remote's answer to a successful authentication.
type LoginResult struct {
	Token string           `json:"token"`
	User  session.Identity `json:"user"`
}

// SubmitResult reports how many entries a batch submission stored.
type SubmitResult struct {
	Stored  int    `json:"stored"`
	Message string `json:"message,omitempty"`
}

// Login authenticates against the remote service. It does not touch the
// session store; the caller decides whether to adopt the returned identity.
func (g *Gateway) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if err := indicators.ValidateEmail(email); err != nil {
		return LoginResult{}, err
	}
	if password == "" {
		return LoginResult{}, &apperrors.ValidationError{Field: "password", Reason: "password is required"}
	}

	var result LoginResult
	err := g.call(ctx, "/api/auth/login", callOptions{
		method: http.MethodPost,
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &result)
	if err != nil {
		return LoginResult{}, err
	}
	if result.Token == "" {
		return LoginResult{}, apperrors.Wrapf(apperrors.ErrMalformedResponse, "login response missing token")
	}
	return result, nil
}

// Register creates a new account. The remote assigns the operator role to
// every self-registered user.
func (g *Gateway) Register(ctx context.Context, registration indicators.Registration) (LoginResult, error) {
	if err := registration.Validate(); err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	err := g.call(ctx, "/api/auth/register", callOptions{
		method: http.MethodPost,
		body:   registration,
	}, &result)
	if err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// RemoteLogout tells the service to retire the bearer credential. Local
// session teardown does not depend on it succeeding.
func (g *Gateway) RemoteLogout(ctx context.Context) error {
	return g.call(ctx, "/api/auth/logout", callOptions{method: http.MethodPost}, nil)
}

// Profile fetches the authenticated user's profile.
func (g *Gateway) Profile(ctx context.Context) (session.Identity, error) {
	var identity session.Identity
	err := g.call(ctx, "/api/auth/profile", callOptions{
		method:   http.MethodGet,
		cacheKey: cacheKeyProfile,
		cacheTTL: g.ttls.Profile,
	}, &identity)
	return identity, err
}

// Units fetches the unit list reference data.
func (g *Gateway) Units(ctx context.Context) ([]indicators.Unit, error) {
	var units []indicators.Unit
	err := g.call(ctx, "/api/units", callOptions{
		method:   http.MethodGet,
		cacheKey: cacheKeyUnits,
		cacheTTL: g.ttls.Units,
	}, &units)
	return units, err
}

// UpdateUnitPhoto changes a unit's photo and drops the cached unit list so
// the next read observes the update.
func (g *Gateway) UpdateUnitPhoto(ctx context.Context, unitID, photoURL string) error {
	if unitID == "" {
		return &apperrors.ValidationError{Field: "unit_id", Reason: "unit id is required"}
	}
	if !photoURLPattern.MatchString(photoURL) {
		return &apperrors.ValidationError{Field: "photo_url", Reason: "invalid photo URL"}
	}

	return g.call(ctx, fmt.Sprintf("/api/units/%s/photo", url.PathEscape(unitID)), callOptions{
		method:         http.MethodPut,
		body:           map[string]string{"photo_url": photoURL},
		invalidateKeys: []string{cacheKeyUnits},
	}, nil)
}

// Dictionary fetches the indicator dictionary reference data.
func (g *Gateway) Dictionary(ctx context.Context) ([]indicators.Indicator, error) {
	var dictionary []indicators.Indicator
	err := g.call(ctx, "/api/indicators/dictionary", callOptions{
		method:   http.MethodGet,
		cacheKey: cacheKeyDictionary,
		cacheTTL: g.ttls.Dictionary,
	}, &dictionary)
	return dictionary, err
}

// Entries fetches the entry report for one unit and period.
func (g *Gateway) Entries(ctx context.Context, filter indicators.EntryFilter) ([]indicators.Entry, error) {
	if filter.Unit == "" {
		return nil, &apperrors.ValidationError{Field: "unit", Reason: "unit is required"}
	}
	if err := indicators.ValidatePeriod(filter.Period); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("unit", filter.Unit)
	query.Set("month", fmt.Sprintf("%d", filter.Period.Month))
	query.Set("year", fmt.Sprintf("%d", filter.Period.Year))

	var entries []indicators.Entry
	err := g.call(ctx, "/api/entries?"+query.Encode(), callOptions{
		method:   http.MethodGet,
		cacheKey: entriesCacheKey(filter),
		cacheTTL: g.ttls.Entries,
	}, &entries)
	return entries, err
}

// SubmitEntries posts one batched submission. A failure may mean partial
// application on the remote, so the gateway never retries; the caller must
// confirm before resubmitting. Success invalidates every cached entry report.
func (g *Gateway) SubmitEntries(ctx context.Context, batch indicators.EntryBatch) (SubmitResult, error) {
	if err := batch.Validate(); err != nil {
		return SubmitResult{}, err
	}

	var result SubmitResult
	err := g.call(ctx, "/api/entries", callOptions{
		method:             http.MethodPost,
		body:               batch,
		invalidatePrefixes: []string{cacheKeyEntriesPrefix},
	}, &result)
	return result, err
}

// AdminUsers fetches the registered-user list. Never cached: administrators
// act on what they see.
func (g *Gateway) AdminUsers(ctx context.Context) ([]indicators.AdminUser, error) {
	var users []indicators.AdminUser
	err := g.call(ctx, "/api/admin/users", callOptions{method: http.MethodGet}, &users)
	return users, err
}

// Health pings the service.
func (g *Gateway) Health(ctx context.Context) error {
	return g.call(ctx, "/api/health", callOptions{method: http.MethodGet}, nil)
}

func entriesCacheKey(filter indicators.EntryFilter) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyEntriesPrefix, filter.Unit, filter.Period)
}
