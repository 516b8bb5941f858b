package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pricekart/compare-service/internal/geo"
)

var autocompleteOutput string

// autocompleteCmd represents the autocomplete command
var autocompleteCmd = &cobra.Command{
	Use:   "autocomplete <query>",
	Short: "List address suggestions for a partial query",
	Long: `List address autocomplete suggestions for a partial location query, using the
same provider and key pool the /autocomplete endpoint uses.`,
	Example: `  compare-service autocomplete "koraman"
  compare-service autocomplete "indiranagar" --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runAutocomplete,
}

func init() {
	rootCmd.AddCommand(autocompleteCmd)

	autocompleteCmd.Flags().StringVar(&autocompleteOutput, "output", "table", "Output format: table or json")
}

func runAutocomplete(cmd *cobra.Command, args []string) error {
	if len(cfg.MapAPIKeys()) == 0 {
		return fmt.Errorf("MAP_API_KEYS not set")
	}

	geoClient := geo.NewClient(geo.Config{
		Keys:    cfg.MapAPIKeys(),
		BaseURL: cfg.Geo.Endpoint,
	})

	suggestions, err := geoClient.Autocomplete(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("autocomplete failed: %w", err)
	}

	if autocompleteOutput == "json" {
		return outputJSON(suggestions)
	}

	if len(suggestions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Println(s)
	}
	return nil
}
