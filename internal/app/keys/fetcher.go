package keys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"group-mail/pkg/logger"

	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	MaxAttempts       int
	InitialBackoff    time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxBodyBytes      int64
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://github.com",
		Timeout:           10 * time.Second,
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		RequestsPerSecond: 10,
		Burst:             10,
		MaxBodyBytes:      1 << 20,
	}
}

// Fetcher downloads <BaseURL>/<user>.keys listings. Safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	config  Config
	limiter *rate.Limiter
	logger  *logger.Logger
}

func NewFetcher(config Config, client *http.Client, l *logger.Logger) *Fetcher {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if client == nil {
		client = &http.Client{}
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Fetcher{
		client:  client,
		config:  config,
		limiter: rate.NewLimiter(limit, burst),
		logger:  l,
	}
}

// FetchKeys returns the RSA keys of user in listing order. Only ErrNetwork
// failures are retried, with exponential backoff.
func (f *Fetcher) FetchKeys(ctx context.Context, user string) ([]RSAPublicKey, error) {
	if strings.TrimSpace(user) == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrMalformedKeyList)
	}

	wait := f.config.InitialBackoff
	for attempt := 1; ; attempt++ {
		keys, err := f.fetchOnce(ctx, user)
		if err == nil {
			return keys, nil
		}
		if !errors.Is(err, ErrNetwork) || attempt >= f.config.MaxAttempts || ctx.Err() != nil {
			return nil, err
		}

		f.logger.Warnf("Fetching keys of %s: attempt %d failed: %v. Retrying in %v...", user, attempt, err, wait)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
		}
		wait *= 2
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, user string) ([]RSAPublicKey, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(f.config.BaseURL, "/") + "/" + url.PathEscape(user) + ".keys"
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKeyList, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s for %s", ErrNonSuccessResponse, resp.Status, user)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrNetwork, err)
	}
	if int64(len(body)) > f.config.MaxBodyBytes {
		return nil, fmt.Errorf("%w: listing exceeds %d bytes", ErrMalformedKeyList, f.config.MaxBodyBytes)
	}

	keys, err := ParseKeyList(string(body))
	if err != nil {
		return nil, fmt.Errorf("keys of %s: %w", user, err)
	}

	f.logger.Debugf("Fetched %d RSA keys of %s", len(keys), user)
	return keys, nil
}
