package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricekart/compare-service/internal/geo"
)

var (
	geocodeLat    float64
	geocodeLon    float64
	geocodeOutput string
)

// geocodeCmd represents the geocode command
var geocodeCmd = &cobra.Command{
	Use:   "geocode [address]",
	Short: "Resolve an address or coordinate pair to a canonical location",
	Long: `Resolve a location through the geocoding provider. Pass an address argument
for forward geocoding, or --lat and --lng for reverse geocoding. The resolved
location is what the comparison pipeline hands to every storefront, so this is
the first thing to check when a coordinate returns no results.`,
	Example: `  compare-service geocode "Koramangala, Bengaluru"
  compare-service geocode --lat 12.9716 --lng 77.5946
  compare-service geocode --lat 28.6139 --lng 77.2090 --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGeocode,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)

	geocodeCmd.Flags().Float64Var(&geocodeLat, "lat", 0, "Latitude for reverse geocoding")
	geocodeCmd.Flags().Float64Var(&geocodeLon, "lng", 0, "Longitude for reverse geocoding")
	geocodeCmd.Flags().StringVar(&geocodeOutput, "output", "table", "Output format: table or json")
}

func runGeocode(cmd *cobra.Command, args []string) error {
	if len(cfg.MapAPIKeys()) == 0 {
		return fmt.Errorf("MAP_API_KEYS not set")
	}

	geoClient := geo.NewClient(geo.Config{
		Keys:    cfg.MapAPIKeys(),
		BaseURL: cfg.Geo.Endpoint,
	})

	ctx := context.Background()

	var (
		loc *geo.Location
		err error
	)
	switch {
	case len(args) == 1:
		loc, err = geoClient.Forward(ctx, args[0])
	case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng"):
		loc, err = geoClient.Reverse(ctx, geocodeLat, geocodeLon)
	default:
		return fmt.Errorf("pass an address argument or both --lat and --lng")
	}
	if err != nil {
		return fmt.Errorf("geocoding failed: %w", err)
	}

	switch strings.ToLower(geocodeOutput) {
	case "json":
		return outputJSON(loc)
	case "table":
		outputLocationTable(loc)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", geocodeOutput)
	}

	return nil
}

func outputLocationTable(loc *geo.Location) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Latitude\t%v\n", loc.Lat)
	fmt.Fprintf(w, "Longitude\t%v\n", loc.Lon)
	fmt.Fprintf(w, "Address\t%s\n", loc.FormattedAddress)
	fmt.Fprintf(w, "Postal code\t%s\n", loc.PostalCode)
	fmt.Fprintf(w, "Place ID\t%s\n", loc.PlaceID)
	fmt.Fprintf(w, "Locality\t%s\n", loc.Locality)
	w.Flush()
}
