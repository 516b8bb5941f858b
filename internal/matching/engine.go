package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/embedding"
	"github.com/pricekart/compare-service/internal/types"
)

// Matching thresholds. Prices and quantities use symmetric relative
// tolerances; names must clear the cosine threshold, or the lexical
// threshold when embeddings are unavailable.
const (
	PriceTolerance             = 0.20
	QuantityTolerance          = 0.10
	NameSimilarityThreshold    = 0.90
	LexicalSimilarityThreshold = 0.80

	// MaxGroups caps the ranked result set returned to clients.
	MaxGroups = 35
)

var errNoProvider = errors.New("embedding provider not configured")

// Offer is one store's listing inside a product group.
type Offer struct {
	Store    string `json:"store"`
	Price    *int   `json:"price"`
	Quantity string `json:"quantity"`
	URL      string `json:"url"`
}

// Group clusters listings judged to be the same product across stores.
// The offers array keeps the historical "price" field name on the wire.
type Group struct {
	Name   string  `json:"name"`
	Image  string  `json:"image"`
	Offers []Offer `json:"price"`

	querySimilarity float64
	minPrice        float64
	minQuantity     float64
}

// candidate carries a listing through grouping with its parsed quantity,
// embedding vector, and normalized name.
type candidate struct {
	listing types.Listing
	qty     *Quantity
	vec     []float32
	norm    string
	grouped bool
}

// Engine groups cross-store listings by name similarity plus price and
// quantity tolerance checks, then ranks groups against the search query.
type Engine struct {
	provider embedding.Provider
	retry    embedding.RetryConfig
	logger   *zerolog.Logger
}

// NewEngine creates a matching engine backed by the given embedding provider.
func NewEngine(provider embedding.Provider, logger *zerolog.Logger) *Engine {
	return &Engine{
		provider: provider,
		retry:    embedding.DefaultRetryConfig(),
		logger:   logger,
	}
}

// GroupAndRank groups the merged listings and orders groups by query
// similarity, store coverage, cheapest price, and smallest pack, truncated
// to MaxGroups. When embedding generation fails the engine degrades to
// lexical name matching instead of failing the search.
func (e *Engine) GroupAndRank(ctx context.Context, listings []types.Listing, query string) []Group {
	if len(listings) == 0 {
		return []Group{}
	}

	cands := make([]*candidate, len(listings))
	for i, l := range listings {
		cands[i] = &candidate{listing: l, qty: ParseQuantity(l.RawQuantity)}
	}

	queryVec, err := e.embedAll(ctx, cands, query)
	if err != nil {
		e.logger.Warn().Err(err).Str("query", query).
			Msg("Embedding generation failed, falling back to lexical matching")
		return rankGroups(lexicalGroups(cands))
	}

	groups := rankGroups(embeddingGroups(cands, queryVec))
	e.logger.Debug().
		Int("listings", len(listings)).
		Int("groups", len(groups)).
		Msg("Grouped listings")
	return groups
}

// embedAll requests one batch covering the query plus every non-empty
// listing name, and writes the vectors back onto the candidates. Returns
// the query vector.
func (e *Engine) embedAll(ctx context.Context, cands []*candidate, query string) ([]float32, error) {
	if e.provider == nil {
		return nil, errNoProvider
	}

	texts := make([]string, 0, len(cands)+1)
	texts = append(texts, query)
	indexes := make([]int, 0, len(cands))
	for i, c := range cands {
		if c.listing.Name != "" {
			texts = append(texts, c.listing.Name)
			indexes = append(indexes, i)
		}
	}

	vectors, err := embedding.EmbedWithRetry(ctx, e.provider, texts, e.retry)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding batch returned %d vectors for %d inputs", len(vectors), len(texts))
	}

	for pos, idx := range indexes {
		cands[idx].vec = vectors[pos+1]
	}
	return vectors[0], nil
}

func embeddingGroups(cands []*candidate, queryVec []float32) []Group {
	match := func(a, b *candidate) bool {
		if a.vec == nil || b.vec == nil {
			return false
		}
		return Cosine(a.vec, b.vec) >= NameSimilarityThreshold
	}
	querySim := func(rep *candidate) float64 {
		if rep.vec == nil || queryVec == nil {
			return -1
		}
		return Cosine(rep.vec, queryVec)
	}
	return buildGroups(cands, match, querySim)
}

func lexicalGroups(cands []*candidate) []Group {
	for _, c := range cands {
		c.norm = NormalizeName(c.listing.Name)
	}
	match := func(a, b *candidate) bool {
		return LexicalSimilarity(a.norm, b.norm) >= LexicalSimilarityThreshold
	}
	querySim := func(rep *candidate) float64 { return 0 }
	return buildGroups(cands, match, querySim)
}

// buildGroups walks candidates once. Each ungrouped listing seeds a group
// with itself as representative, then claims every later listing that
// matches on price, quantity, and name. A claimed listing whose platform is
// already represented is consumed without adding a duplicate offer, so each
// group holds at most one offer per store.
func buildGroups(cands []*candidate, nameMatch func(a, b *candidate) bool, querySim func(rep *candidate) float64) []Group {
	groups := make([]Group, 0, len(cands))
	for i, c := range cands {
		if c.grouped {
			continue
		}
		c.grouped = true

		g := Group{
			Name:            c.listing.Name,
			Image:           c.listing.ImageURL,
			Offers:          []Offer{offerOf(c)},
			querySimilarity: querySim(c),
			minPrice:        math.Inf(1),
			minQuantity:     math.Inf(1),
		}
		g.accumulate(c)
		seen := map[types.Platform]bool{c.listing.Platform: true}

		for _, other := range cands[i+1:] {
			if other.grouped {
				continue
			}
			if !PriceClose(c.listing.Price, other.listing.Price, PriceTolerance) {
				continue
			}
			if !QuantitySimilar(c.qty, other.qty, QuantityTolerance) {
				continue
			}
			if !nameMatch(c, other) {
				continue
			}
			other.grouped = true
			if !seen[other.listing.Platform] {
				seen[other.listing.Platform] = true
				g.Offers = append(g.Offers, offerOf(other))
				g.accumulate(other)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// accumulate folds an offer's price and parsed quantity into the group's
// rank fields. Groups with no parseable price or quantity keep +Inf and
// sort after everything else on that key.
func (g *Group) accumulate(c *candidate) {
	if c.listing.Price != nil && float64(*c.listing.Price) < g.minPrice {
		g.minPrice = float64(*c.listing.Price)
	}
	if c.qty != nil && c.qty.Value < g.minQuantity {
		g.minQuantity = c.qty.Value
	}
}

func offerOf(c *candidate) Offer {
	return Offer{
		Store:    c.listing.Platform.StoreName(),
		Price:    c.listing.Price,
		Quantity: c.listing.RawQuantity,
		URL:      c.listing.ProductURL,
	}
}

// rankGroups orders groups by descending query similarity, then descending
// store coverage, then ascending cheapest price, then ascending smallest
// pack, and truncates to MaxGroups.
func rankGroups(groups []Group) []Group {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.querySimilarity != b.querySimilarity {
			return a.querySimilarity > b.querySimilarity
		}
		if len(a.Offers) != len(b.Offers) {
			return len(a.Offers) > len(b.Offers)
		}
		if a.minPrice != b.minPrice {
			return a.minPrice < b.minPrice
		}
		return a.minQuantity < b.minQuantity
	})
	if len(groups) > MaxGroups {
		groups = groups[:MaxGroups]
	}
	return groups
}
