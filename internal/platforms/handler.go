// Package platforms implements one search handler per quick-commerce
// storefront. Each handler owns the storefront's credential handshake and its
// private search API, and hides both behind a common contract: hand in a
// query, a location and whatever credential the client still holds, get back
// listings plus the credential to hand out next time.
package platforms

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

// userAgent is the desktop browser identity presented to every storefront.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// Handler is the per-storefront search contract.
type Handler interface {
	Platform() types.Platform

	// Acquire runs the storefront's handshake and returns a fresh credential.
	// A NonServiceableError may come back alongside a marker credential that
	// records the refusal.
	Acquire(ctx context.Context, loc geo.Location) (Credential, error)

	// Search returns in-stock listings for the query. It must not fail the
	// caller's request: after exhausting its attempts it returns no listings,
	// the last credential it could hold on to, and the final error for
	// logging. A nil error with no listings is a valid outcome.
	Search(ctx context.Context, query string, loc geo.Location, cred Credential) ([]types.Listing, Credential, error)
}

// retryConfig controls the per-search attempt budget and backoff window.
type retryConfig struct {
	MaxAttempts      int
	InitialBackoffMs int
	MaxBackoffMs     int
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		MaxAttempts:      3,
		InitialBackoffMs: 100,
		MaxBackoffMs:     30000,
	}
}

// baseHandler holds what every storefront handler shares.
type baseHandler struct {
	platform types.Platform
	proxy    *proxy.Client
	log      zerolog.Logger
	retry    retryConfig
}

func newBaseHandler(p types.Platform, client *proxy.Client, logger *zerolog.Logger) baseHandler {
	return baseHandler{
		platform: p,
		proxy:    client,
		log:      logger.With().Str("platform", string(p)).Logger(),
		retry:    defaultRetryConfig(),
	}
}

func (b *baseHandler) Platform() types.Platform { return b.platform }

// searchWithRetry drives the common attempt loop. Attempt one runs with the
// supplied credential when it looks usable; every later attempt re-acquires
// first. A non-serviceable verdict stops the loop immediately and surfaces as
// a success carrying the marker credential.
func (b *baseHandler) searchWithRetry(
	ctx context.Context,
	loc geo.Location,
	cred Credential,
	acquire func(context.Context) (Credential, error),
	attempt func(context.Context, Credential) ([]types.Listing, error),
) ([]types.Listing, Credential, error) {
	if cred != nil {
		if m, ok := cred.(serviceabilityMarker); ok && m.NonServiceableFor(loc) {
			b.log.Debug().Msg("Skipping search, location marked non-serviceable")
			return []types.Listing{}, cred, nil
		}
	}

	lastKnown := cred
	current := cred
	var lastErr error

	for i := 0; i < b.retry.MaxAttempts; i++ {
		if i > 0 {
			if err := sleepBackoff(ctx, i-1, b.retry); err != nil {
				return []types.Listing{}, lastKnown, err
			}
		}

		if current == nil || !current.Valid() {
			fresh, err := acquire(ctx)
			if err != nil {
				if IsNonServiceable(err) {
					if fresh != nil {
						lastKnown = fresh
					}
					b.log.Info().Msg("Location not serviceable")
					return []types.Listing{}, lastKnown, nil
				}
				lastErr = err
				b.log.Warn().Err(err).Int("attempt", i+1).Msg("Credential acquisition failed")
				continue
			}
			current = fresh
			lastKnown = fresh
		}

		listings, err := attempt(ctx, current)
		if err == nil {
			return listings, current, nil
		}
		if IsNonServiceable(err) {
			b.log.Info().Msg("Location not serviceable")
			return []types.Listing{}, lastKnown, nil
		}
		lastErr = err
		b.log.Warn().Err(err).Int("attempt", i+1).Msg("Search attempt failed, re-acquiring credentials")
		current = nil
	}

	b.log.Error().Err(lastErr).Int("attempts", b.retry.MaxAttempts).Msg("Search failed after retries")
	return []types.Listing{}, lastKnown, lastErr
}

// doStep runs one handshake request, retrying transport failures with a
// fresh proxy session id each time. The session pointer is rotated in place
// so later steps reuse whichever exit IP finally worked.
func (b *baseHandler) doStep(ctx context.Context, step string, session *string, build func(sessionID string) proxy.Request) (*proxy.Response, error) {
	var lastErr error
	for i := 0; i < b.retry.MaxAttempts; i++ {
		if i > 0 {
			*session = newSessionID()
			if err := sleepBackoff(ctx, i-1, b.retry); err != nil {
				return nil, &CredentialAcquisitionError{Platform: b.platform, Step: step, Err: err}
			}
		}
		resp, err := b.proxy.Do(ctx, build(*session))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		b.log.Warn().Err(err).Str("step", step).Int("attempt", i+1).Msg("Handshake step failed")
	}
	return nil, &CredentialAcquisitionError{Platform: b.platform, Step: step, Err: lastErr}
}

// sleepBackoff waits out the backoff for the given zero-based attempt, or
// returns early with the context error.
func sleepBackoff(ctx context.Context, attempt int, cfg retryConfig) error {
	timer := time.NewTimer(calculateBackoff(attempt, cfg))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// calculateBackoff returns the exponential backoff delay for a zero-based
// attempt, capped at the configured maximum, with up to 25% jitter added.
func calculateBackoff(attempt int, cfg retryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoffMs) * math.Pow(2, float64(attempt))
	backoff = math.Min(backoff, float64(cfg.MaxBackoffMs))
	backoff += rand.Float64() * backoff * 0.25
	return time.Duration(backoff * float64(time.Millisecond))
}

const sessionIDDigits = "123456789"

// newSessionID returns a five-digit proxy session id. Zero is excluded
// because the proxy rejects ids with leading zeros.
func newSessionID() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = sessionIDDigits[rand.Intn(len(sessionIDDigits))]
	}
	return string(b)
}

var (
	slugStripRe    = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	slugSpacesRe   = regexp.MustCompile(` +`)
	imageSlugRe    = regexp.MustCompile(`[^a-zA-Z0-9]`)
	imageHyphensRe = regexp.MustCompile(`-+`)
)

// productSlug renders a product name the way storefront URLs do: punctuation
// dropped, runs of spaces collapsed to single hyphens, lowercased.
func productSlug(name string) string {
	s := slugStripRe.ReplaceAllString(name, "")
	s = slugSpacesRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}

// imageSlug hyphenates every non-alphanumeric run, the form Zepto's image
// CDN expects in its SEO path segment.
func imageSlug(name string) string {
	s := imageSlugRe.ReplaceAllString(name, "-")
	return imageHyphensRe.ReplaceAllString(s, "-")
}

// flexString decodes a JSON field that storefronts serve sometimes as a
// string and sometimes as a bare number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

func (f flexString) String() string { return string(f) }

// cloneHeaders copies a header template so per-request mutations never leak
// between calls.
func cloneHeaders(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// coordString renders a coordinate without exponent notation or trailing
// zeros, the form storefront APIs expect in headers and cookies.
func coordString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
