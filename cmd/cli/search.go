package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricekart/compare-service/internal/embedding"
	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/matching"
	"github.com/pricekart/compare-service/internal/orchestrator"
	"github.com/pricekart/compare-service/internal/platforms"
	"github.com/pricekart/compare-service/internal/proxy"
)

var (
	searchLat    float64
	searchLon    float64
	searchOutput string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a live price comparison across all storefronts",
	Long: `Run a live price comparison for a product query. The query is searched on
every supported storefront concurrently, listings are grouped by product
identity, and groups are ranked by relevance to the query.

Fresh storefront credentials are resolved from the coordinates on every run,
so expect a few extra round trips compared to a warmed-up API call.

Output can be formatted as a human-readable table (default) or JSON.`,
	Example: `  compare-service search "amul butter" --lat 12.9716 --lng 77.5946
  compare-service search atta --lat 28.6139 --lng 77.2090 --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "Latitude of the delivery location")
	searchCmd.Flags().Float64Var(&searchLon, "lng", 0, "Longitude of the delivery location")
	searchCmd.Flags().StringVar(&searchOutput, "output", "table", "Output format: table or json")
	searchCmd.MarkFlagRequired("lat")
	searchCmd.MarkFlagRequired("lng")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchLat < -90 || searchLat > 90 {
		return fmt.Errorf("latitude out of range: %v", searchLat)
	}
	if searchLon < -180 || searchLon > 180 {
		return fmt.Errorf("longitude out of range: %v", searchLon)
	}

	comparer, err := buildComparer()
	if err != nil {
		return err
	}

	logger.Info().
		Str("query", query).
		Float64("lat", searchLat).
		Float64("lng", searchLon).
		Msg("Starting comparison")

	result, err := comparer.Compare(context.Background(), query, searchLat, searchLon, nil)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	logger.Info().Msgf("Matched %d product groups", len(result.Groups))

	switch strings.ToLower(searchOutput) {
	case "json":
		return outputJSON(result)
	case "table":
		outputGroupTable(result.Groups)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", searchOutput)
	}

	return nil
}

// buildComparer assembles the full comparison pipeline from config. The CLI
// makes uncached live calls, so missing keys surface here rather than later.
func buildComparer() (*orchestrator.Service, error) {
	if cfg.Proxy.APIKey == "" {
		return nil, fmt.Errorf("PROXY_API_KEY not set")
	}
	if cfg.Embedding.APIKey == "" {
		return nil, fmt.Errorf("EMBEDDING_API_KEY not set")
	}
	if len(cfg.MapAPIKeys()) == 0 {
		return nil, fmt.Errorf("MAP_API_KEYS not set")
	}

	proxyClient := proxy.NewClient(proxy.Config{
		APIKey:   cfg.Proxy.APIKey,
		Endpoint: cfg.Proxy.Endpoint,
	})
	geoClient := geo.NewClient(geo.Config{
		Keys:    cfg.MapAPIKeys(),
		BaseURL: cfg.Geo.Endpoint,
	})
	embedder := embedding.NewMistralClient(embedding.MistralConfig{
		APIKey:   cfg.Embedding.APIKey,
		Endpoint: cfg.Embedding.Endpoint,
	})
	cached, err := embedding.NewCache(embedder, cfg.Embedding.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	engine := matching.NewEngine(cached, logger)
	registry := platforms.NewDefaultRegistry(proxyClient, logger)

	return orchestrator.NewService(geoClient, registry, engine, orchestrator.Config{
		Timeout: cfg.SearchTimeout(),
	}, logger), nil
}

func outputGroupTable(groups []matching.Group) {
	if len(groups) == 0 {
		fmt.Println("No matching products found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tSTORE\tPRICE\tQUANTITY")
	fmt.Fprintln(w, "-------\t-----\t-----\t--------")

	for _, g := range groups {
		for i, offer := range g.Offers {
			name := ""
			if i == 0 {
				name = g.Name
			}
			price := "-"
			if offer.Price != nil {
				price = fmt.Sprintf("₹%d", *offer.Price)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, offer.Store, price, offer.Quantity)
		}
	}

	w.Flush()
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
