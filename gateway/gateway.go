// Package gateway is the single chokepoint for outbound calls to the
// reporting service. Every call gets a timeout, bearer-credential injection,
// and failure normalization into the taxonomy in internal/errors. Idempotent
// GETs may be served from the TTL cache; mutations never are, and invalidate
// the cached reads they affect.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-indicator-client/cache"
	apperrors "github.com/jrsteele09/go-indicator-client/internal/errors"
	"github.com/jrsteele09/go-indicator-client/session"
)

// CacheTTLs carries the externally supplied per-key cache durations.
type CacheTTLs struct {
	Profile    time.Duration
	Units      time.Duration
	Dictionary time.Duration
	Entries    time.Duration
}

// PendingRequest describes one in-flight outbound call. It exists only for
// the duration of the call and is retired on every exit path.
type PendingRequest struct {
	ID        string
	Endpoint  string
	Method    string
	StartedAt time.Time
	Timeout   time.Duration
}

type Gateway struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Store
	cache      *cache.Store
	timeout    time.Duration
	ttls       CacheTTLs

	pendingMu sync.Mutex
	pending   map[string]PendingRequest
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithHTTPClient substitutes the underlying HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.timeout = timeout
	}
}

// New initializes a Gateway with required dependencies.
func New(baseURL string, sessions *session.Store, cacheStore *cache.Store, ttls CacheTTLs, options ...GatewayOption) (*Gateway, error) {
	if baseURL == "" {
		return nil, errors.New("[gateway.New] baseURL is required")
	}
	if sessions == nil {
		return nil, errors.New("[gateway.New] session store is required")
	}
	if cacheStore == nil {
		return nil, errors.New("[gateway.New] cache store is required")
	}

	g := &Gateway{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		sessions:   sessions,
		cache:      cacheStore,
		timeout:    10 * time.Second,
		ttls:       ttls,
		pending:    make(map[string]PendingRequest),
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// InFlight returns a snapshot of the calls currently awaiting a response.
func (g *Gateway) InFlight() []PendingRequest {
	g.pendingMu.Lock()
	defer g.pendingMu.Unlock()

	requests := make([]PendingRequest, 0, len(g.pending))
	for _, r := range g.pending {
		requests = append(requests, r)
	}
	return requests
}

// callOptions shapes a single outbound call.
type callOptions struct {
	method             string
	body               any
	cacheKey           string // GET only: serve from / store into this cache key
	cacheTTL           time.Duration
	invalidateKeys     []string // mutations only: keys to drop on success
	invalidatePrefixes []string
}

// call performs one normalized outbound request, decoding the response body
// into out when out is non-nil.
func (g *Gateway) call(ctx context.Context, endpoint string, opts callOptions, out any) error {
	if opts.method == http.MethodGet && opts.cacheKey != "" {
		if cached, ok := g.cache.Get(opts.cacheKey); ok {
			if out == nil {
				return nil
			}
			if raw, ok := cached.([]byte); ok {
				if err := json.Unmarshal(raw, out); err == nil {
					log.Debug().Str("endpoint", endpoint).Str("cacheKey", opts.cacheKey).Msg("served from cache")
					return nil
				}
			}
			// An undecodable cached payload behaves like a miss.
			g.cache.Invalidate(opts.cacheKey)
		}
	}

	raw, err := g.roundTrip(ctx, endpoint, opts)
	if err != nil {
		return err
	}

	// The remote applied a successful mutation whether or not its response
	// body decodes, so the affected cache entries are dropped first.
	if opts.method != http.MethodGet {
		for _, key := range opts.invalidateKeys {
			g.cache.Invalidate(key)
		}
		for _, prefix := range opts.invalidatePrefixes {
			g.cache.InvalidatePrefix(prefix)
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperrors.Wrapf(apperrors.ErrMalformedResponse, "decoding %s %s", opts.method, endpoint)
		}
	}

	if opts.method == http.MethodGet && opts.cacheKey != "" {
		g.cache.Set(opts.cacheKey, raw, opts.cacheTTL)
	}
	return nil
}

// roundTrip issues the HTTP request and normalizes every failure mode. The
// remote operation may still complete server-side after a timeout here; the
// caller sees exactly one outcome per call either way.
func (g *Gateway) roundTrip(ctx context.Context, endpoint string, opts callOptions) ([]byte, error) {
	var bodyReader io.Reader
	if opts.body != nil {
		payload, err := json.Marshal(opts.body)
		if err != nil {
			return nil, errors.Wrap(err, "[Gateway.roundTrip] marshal request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, opts.method, g.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.roundTrip] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	// A credential is attached only while a session is live.
	if g.sessions.Current() != nil && g.sessions.Token() != "" {
		req.Header.Set("Authorization", "Bearer "+g.sessions.Token())
	}

	retire := g.track(endpoint, opts.method)
	defer retire()

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("endpoint", endpoint).Dur("timeout", g.timeout).Msg("request timed out")
			return nil, apperrors.Wrapf(apperrors.ErrTimeout, "%s %s", opts.method, endpoint)
		}
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("request failed to reach the service")
		return nil, apperrors.Wrapf(apperrors.ErrNetworkUnavailable, "%s %s", opts.method, endpoint)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedResponse, "reading %s %s", opts.method, endpoint)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// One logout per failing call; Logout itself is idempotent, so
		// concurrent expired calls cannot corrupt the store.
		if err := g.sessions.Logout(); err != nil {
			log.Error().Err(err).Msg("logout after session expiry failed")
		}
		log.Info().Str("endpoint", endpoint).Msg("session expired, logged out")
		return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "%s %s", opts.method, endpoint)
	}

	if resp.StatusCode >= 400 {
		return nil, &apperrors.RemoteError{
			Status:  resp.StatusCode,
			Message: remoteMessage(raw),
		}
	}

	return raw, nil
}

func (g *Gateway) track(endpoint, method string) func() {
	request := PendingRequest{
		ID:        uuid.New().String(),
		Endpoint:  endpoint,
		Method:    method,
		StartedAt: time.Now(),
		Timeout:   g.timeout,
	}

	g.pendingMu.Lock()
	g.pending[request.ID] = request
	g.pendingMu.Unlock()

	return func() {
		g.pendingMu.Lock()
		delete(g.pending, request.ID)
		g.pendingMu.Unlock()
	}
}

// remoteMessage extracts the service's human-readable error text, tolerating
// both {"message": ...} and {"error": ...} shapes.
func remoteMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
