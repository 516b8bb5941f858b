package platforms

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

// Registry holds one handler per storefront.
type Registry struct {
	mu       sync.RWMutex
	handlers map[types.Platform]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[types.Platform]Handler)}
}

// Register adds a handler, replacing any previous one for the same platform.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Platform()] = h
}

// Get returns the handler registered for a platform.
func (r *Registry) Get(p types.Platform) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[p]
	return h, ok
}

// All returns the registered handlers in canonical platform order, so that
// fan-out and result merging stay deterministic.
func (r *Registry) All() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handlers := make([]Handler, 0, len(r.handlers))
	for _, p := range types.Platforms {
		if h, ok := r.handlers[p]; ok {
			handlers = append(handlers, h)
		}
	}
	return handlers
}

// NewDefaultRegistry wires every supported storefront against the given
// proxy client.
func NewDefaultRegistry(client *proxy.Client, logger *zerolog.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewBigBasket(client, logger))
	r.Register(NewBlinkit(client, logger))
	r.Register(NewInstamart(client, logger))
	r.Register(NewDMart(client, logger))
	r.Register(NewZepto(client, logger))
	return r
}
