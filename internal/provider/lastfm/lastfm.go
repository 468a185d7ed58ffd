package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/sydlexius/songscape/internal/document"
	"github.com/sydlexius/songscape/internal/metrics"
	"github.com/sydlexius/songscape/internal/provider"
	"github.com/sydlexius/songscape/internal/version"
)

const (
	defaultBaseURL      = "https://ws.audioscrobbler.com/2.0"
	defaultTimeout      = 5 * time.Second
	defaultSimilarLimit = 5
	maxBodyBytes        = 512 * 1024
)

// Config holds the adapter settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	SimilarLimit int
	Breaker      provider.BreakerSettings
}

// Adapter fetches artist profiles and similar-artist lists from Last.fm.
type Adapter struct {
	client       *http.Client
	limiter      *provider.RateLimiterMap
	breaker      *provider.Breaker
	logger       *slog.Logger
	apiKey       string
	baseURL      string
	timeout      time.Duration
	similarLimit int
}

// New creates a Last.fm adapter. Zero-valued settings fall back to defaults.
func New(cfg Config, limiter *provider.RateLimiterMap, logger *slog.Logger) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = defaultSimilarLimit
	}
	if cfg.Breaker == (provider.BreakerSettings{}) {
		cfg.Breaker = provider.DefaultBreakerSettings()
	}
	logger = logger.With(slog.String("provider", string(provider.NameLastFM)))

	return &Adapter{
		client:       &http.Client{Timeout: cfg.Timeout},
		limiter:      limiter,
		breaker:      provider.NewBreaker(provider.NameLastFM, cfg.Breaker, logger),
		logger:       logger,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:      cfg.Timeout,
		similarLimit: cfg.SimilarLimit,
	}
}

// Configured reports whether an API key is set.
func (a *Adapter) Configured() bool { return a.apiKey != "" }

// FetchProfile returns the artist.getinfo "artist" object for name, or an
// empty object when Last.fm cannot supply one for any reason.
func (a *Adapter) FetchProfile(ctx context.Context, name string) document.Document {
	doc, err := a.GetInfo(ctx, name)
	if err != nil {
		a.logFailure("artist.getinfo", name, err)
		return document.Empty()
	}
	return doc
}

// FetchSimilar returns the artist.getsimilar entries for name, or an empty
// list when Last.fm cannot supply them for any reason.
func (a *Adapter) FetchSimilar(ctx context.Context, name string) []document.Document {
	docs, err := a.GetSimilar(ctx, name)
	if err != nil {
		a.logFailure("artist.getsimilar", name, err)
		return []document.Document{}
	}
	return docs
}

// GetInfo calls artist.getinfo and returns the raw artist object.
func (a *Adapter) GetInfo(ctx context.Context, name string) (document.Document, error) {
	body, err := a.call(ctx, "artist.getinfo", url.Values{"artist": {name}})
	if err != nil {
		return nil, err
	}

	var resp InfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, a.unavailable(fmt.Errorf("parsing artist info: %w", err))
	}
	if err := a.checkAPIError(resp.apiError, name); err != nil {
		return nil, err
	}
	if !resp.Artist.IsObject() {
		return nil, &provider.ErrNotFound{Provider: provider.NameLastFM, ID: name}
	}
	return resp.Artist, nil
}

// GetSimilar calls artist.getsimilar and returns the raw similar-artist
// objects in Last.fm's order.
func (a *Adapter) GetSimilar(ctx context.Context, name string) ([]document.Document, error) {
	body, err := a.call(ctx, "artist.getsimilar", url.Values{
		"artist": {name},
		"limit":  {strconv.Itoa(a.similarLimit)},
	})
	if err != nil {
		return nil, err
	}

	var resp SimilarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, a.unavailable(fmt.Errorf("parsing similar artists: %w", err))
	}
	if err := a.checkAPIError(resp.apiError, name); err != nil {
		return nil, err
	}

	raw := resp.SimilarArtists.Artist
	switch {
	case raw.IsObject():
		return []document.Document{raw}, nil
	case !raw.IsArray():
		return nil, &provider.ErrNotFound{Provider: provider.NameLastFM, ID: name}
	}

	var items []document.Document
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, a.unavailable(fmt.Errorf("parsing similar artist list: %w", err))
	}
	out := make([]document.Document, 0, len(items))
	for _, it := range items {
		if it.IsObject() {
			out = append(out, it)
		}
	}
	return out, nil
}

// call performs one rate-limited, breaker-guarded GET within the
// configured timeout and returns the response body.
func (a *Adapter) call(ctx context.Context, method string, params url.Values) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.ProviderRequests.WithLabelValues(string(provider.NameLastFM), method, provider.Outcome(err)).Inc()
		metrics.ProviderDuration.WithLabelValues(string(provider.NameLastFM), method).Observe(time.Since(start).Seconds())
	}()

	if a.apiKey == "" {
		return nil, &provider.ErrAuthRequired{Provider: provider.NameLastFM}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.limiter.Wait(ctx, provider.NameLastFM); err != nil {
		return nil, a.unavailable(fmt.Errorf("rate limiter: %w", err))
	}

	params.Set("method", method)
	params.Set("api_key", a.apiKey)
	params.Set("format", "json")
	reqURL := a.baseURL + "/?" + params.Encode()

	return a.breaker.Execute(func() ([]byte, error) {
		return a.doRequest(ctx, method, reqURL)
	})
}

func (a *Adapter) doRequest(ctx context.Context, method, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Songscape/"+version.Version)
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("requesting", slog.String("method", method))

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from configured base + API params
	if err != nil {
		return nil, a.unavailable(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrAuthRequired{Provider: provider.NameLastFM}
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, a.unavailable(fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, a.unavailable(fmt.Errorf("reading body: %w", err))
	}
	return body, nil
}

// checkAPIError maps a Last.fm error payload to a provider error.
func (a *Adapter) checkAPIError(e apiError, name string) error {
	switch e.Code {
	case 0:
		return nil
	case errCodeNotFound:
		return &provider.ErrNotFound{Provider: provider.NameLastFM, ID: name}
	case errCodeInvalidAPIKey, errCodeSuspendedAPIKey, errCodeAuthFailed:
		return &provider.ErrAuthRequired{Provider: provider.NameLastFM}
	case errCodeRateLimited:
		return &provider.ErrProviderUnavailable{
			Provider:   provider.NameLastFM,
			Cause:      fmt.Errorf("rate limit exceeded: %s", e.Message),
			RetryAfter: time.Minute,
		}
	default:
		return a.unavailable(fmt.Errorf("api error %d: %s", e.Code, e.Message))
	}
}

func (a *Adapter) unavailable(cause error) error {
	return &provider.ErrProviderUnavailable{Provider: provider.NameLastFM, Cause: cause}
}

func (a *Adapter) logFailure(method, name string, err error) {
	display := provider.NameLastFM.DisplayName()
	attrs := []any{
		slog.String("method", method),
		slog.String("artist", name),
		slog.String("error", err.Error()),
	}
	var nf *provider.ErrNotFound
	var auth *provider.ErrAuthRequired
	var unavailable *provider.ErrProviderUnavailable
	switch {
	case errors.As(err, &nf):
		a.logger.Debug("no "+display+" data", attrs...)
	case errors.As(err, &auth) && !a.Configured():
		a.logger.Debug(display+" API key not configured", attrs...)
	default:
		if errors.As(err, &unavailable) && unavailable.RetryAfter > 0 {
			attrs = append(attrs, slog.Duration("retry_after", unavailable.RetryAfter))
		}
		a.logger.Warn(display+" request failed", attrs...)
	}
}
