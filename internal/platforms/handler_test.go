package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func fastRetry() retryConfig {
	return retryConfig{MaxAttempts: 3, InitialBackoffMs: 1, MaxBackoffMs: 2}
}

func newTestBase() baseHandler {
	return baseHandler{
		platform: types.PlatformDMart,
		log:      zerolog.Nop(),
		retry:    fastRetry(),
	}
}

// fakeProxy stands in for the scraping proxy. It routes on the url query
// parameter; the longest registered prefix wins, and unexpected targets fail
// the test.
type fakeProxy struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []string
}

func newFakeProxy(t *testing.T) *fakeProxy {
	t.Helper()
	f := &fakeProxy{t: t, routes: make(map[string]http.HandlerFunc)}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")

		f.mu.Lock()
		f.calls = append(f.calls, target)
		var handler http.HandlerFunc
		longest := ""
		for prefix, h := range f.routes {
			if strings.HasPrefix(target, prefix) && len(prefix) > len(longest) {
				longest, handler = prefix, h
			}
		}
		f.mu.Unlock()

		if handler == nil {
			f.t.Errorf("unexpected proxy target %q", target)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeProxy) handle(prefix string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[prefix] = h
}

func (f *fakeProxy) client() *proxy.Client {
	return proxy.NewClient(proxy.Config{APIKey: "test-key", Endpoint: f.server.URL})
}

func (f *fakeProxy) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestSearchWithRetryUsesSuppliedCredential(t *testing.T) {
	base := newTestBase()
	cred := &DMartCredential{PlaceID: "p1", Serviceable: true}
	acquires := 0

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{PlaceID: "p1"}, cred,
		func(ctx context.Context) (Credential, error) {
			acquires++
			return nil, errors.New("must not acquire")
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			assert.Same(t, cred, c)
			return []types.Listing{{Platform: types.PlatformDMart, Name: "Atta"}}, nil
		})

	require.NoError(t, err)
	assert.Zero(t, acquires)
	assert.Same(t, cred, got)
	assert.Len(t, listings, 1)
}

func TestSearchWithRetryAcquiresWhenCredentialMissing(t *testing.T) {
	base := newTestBase()
	fresh := &DMartCredential{PlaceID: "p1", Serviceable: true}

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{}, nil,
		func(ctx context.Context) (Credential, error) {
			return fresh, nil
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			assert.Same(t, fresh, c)
			return []types.Listing{}, nil
		})

	require.NoError(t, err)
	assert.Same(t, fresh, got)
	assert.Empty(t, listings)
}

func TestSearchWithRetryReacquiresAfterFailure(t *testing.T) {
	base := newTestBase()
	stale := &DMartCredential{PlaceID: "p1", Serviceable: true}
	fresh := &DMartCredential{PlaceID: "p1", Serviceable: true}
	acquires, attempts := 0, 0

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{}, stale,
		func(ctx context.Context) (Credential, error) {
			acquires++
			return fresh, nil
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			attempts++
			if attempts == 1 {
				return nil, &proxy.UpstreamStatusError{Code: http.StatusNotFound, URL: "u"}
			}
			assert.Same(t, fresh, c)
			return []types.Listing{{Name: "Atta"}}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, acquires)
	assert.Equal(t, 2, attempts)
	assert.Same(t, fresh, got)
	assert.Len(t, listings, 1)
}

func TestSearchWithRetryExhaustionKeepsInputCredential(t *testing.T) {
	base := newTestBase()
	cred := &DMartCredential{PlaceID: "p1", Serviceable: true}
	wantErr := errors.New("connection reset")
	acquires, attempts := 0, 0

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{}, cred,
		func(ctx context.Context) (Credential, error) {
			acquires++
			return nil, wantErr
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			attempts++
			return nil, wantErr
		})

	assert.ErrorIs(t, err, wantErr)
	assert.Same(t, cred, got)
	assert.Empty(t, listings)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 2, acquires)
}

func TestSearchWithRetryAdoptsNewestCredentialOnExhaustion(t *testing.T) {
	base := newTestBase()
	input := &DMartCredential{PlaceID: "p1", Serviceable: true}
	fresh := &DMartCredential{PlaceID: "p1", Serviceable: true}

	_, got, err := base.searchWithRetry(context.Background(), geo.Location{}, input,
		func(ctx context.Context) (Credential, error) {
			return fresh, nil
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			return nil, errors.New("upstream 500")
		})

	require.Error(t, err)
	assert.Same(t, fresh, got)
}

func TestSearchWithRetryNonServiceableShortCircuits(t *testing.T) {
	base := newTestBase()
	marker := &DMartCredential{PlaceID: "p1", Serviceable: false}
	attempts := 0

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{PlaceID: "p1"}, nil,
		func(ctx context.Context) (Credential, error) {
			return marker, &NonServiceableError{Platform: types.PlatformDMart}
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			attempts++
			return nil, nil
		})

	require.NoError(t, err)
	assert.Zero(t, attempts)
	assert.Same(t, marker, got)
	assert.Empty(t, listings)
}

func TestSearchWithRetrySkipsMarkedLocation(t *testing.T) {
	base := newTestBase()
	marker := &DMartCredential{PlaceID: "p1", Serviceable: false}
	calls := 0

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{PlaceID: "p1"}, marker,
		func(ctx context.Context) (Credential, error) {
			calls++
			return nil, errors.New("must not acquire")
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			calls++
			return nil, nil
		})

	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Same(t, marker, got)
	assert.Empty(t, listings)
}

func TestSearchWithRetryRechecksDifferentLocation(t *testing.T) {
	base := newTestBase()
	marker := &DMartCredential{PlaceID: "p1", Serviceable: false}
	fresh := &DMartCredential{PlaceID: "p2", Serviceable: true}

	listings, got, err := base.searchWithRetry(context.Background(), geo.Location{PlaceID: "p2"}, marker,
		func(ctx context.Context) (Credential, error) {
			return fresh, nil
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			return []types.Listing{{Name: "Atta"}}, nil
		})

	require.NoError(t, err)
	assert.Same(t, fresh, got)
	assert.Len(t, listings, 1)
}

func TestSearchWithRetryStopsOnContextCancel(t *testing.T) {
	base := newTestBase()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	_, got, err := base.searchWithRetry(ctx, geo.Location{}, nil,
		func(ctx context.Context) (Credential, error) {
			attempts++
			cancel()
			return nil, errors.New("network down")
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			t.Fatal("search must not run")
			return nil, nil
		})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Equal(t, 1, attempts)
}

func TestCalculateBackoff(t *testing.T) {
	cfg := retryConfig{MaxAttempts: 3, InitialBackoffMs: 100, MaxBackoffMs: 400}

	for i := 0; i < 50; i++ {
		first := calculateBackoff(0, cfg)
		assert.GreaterOrEqual(t, first, 100*time.Millisecond)
		assert.LessOrEqual(t, first, 125*time.Millisecond)

		second := calculateBackoff(1, cfg)
		assert.GreaterOrEqual(t, second, 200*time.Millisecond)
		assert.LessOrEqual(t, second, 250*time.Millisecond)

		capped := calculateBackoff(5, cfg)
		assert.GreaterOrEqual(t, capped, 400*time.Millisecond)
		assert.LessOrEqual(t, capped, 500*time.Millisecond)
	}
}

func TestNewSessionID(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := newSessionID()
		require.Len(t, id, 5)
		for _, c := range id {
			assert.Contains(t, sessionIDDigits, string(c))
		}
	}
}

func TestProductSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces to hyphens", "Amul Gold Milk", "amul-gold-milk"},
		{"punctuation dropped", "Amul Gold Milk (1 L)", "amul-gold-milk-1-l"},
		{"space runs collapsed", "Tata  Salt   Iodised", "tata-salt-iodised"},
		{"hyphen in name", "Maggi 2-Minute Noodles", "maggi-2minute-noodles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productSlug(tt.in))
		})
	}
}

func TestImageSlug(t *testing.T) {
	assert.Equal(t, "Amul-Gold-Milk", imageSlug("Amul Gold Milk"))
	assert.Equal(t, "Amul-Gold-Milk-1-L-", imageSlug("Amul Gold Milk (1 L)"))
}

func TestFlexString(t *testing.T) {
	var doc struct {
		Price flexString `json:"price"`
		ID    flexString `json:"id"`
		Null  flexString `json:"null"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":266.25,"id":"abc-1","null":null}`), &doc))
	assert.Equal(t, "266.25", doc.Price.String())
	assert.Equal(t, "abc-1", doc.ID.String())
	assert.Equal(t, "", doc.Null.String())
}

func TestCoordString(t *testing.T) {
	assert.Equal(t, "12.9716", coordString(12.9716))
	assert.Equal(t, "77", coordString(77))
}
