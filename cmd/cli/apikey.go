package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricekart/compare-service/internal/apikeys"
)

var apikeyDecode string

// apikeyCmd represents the apikey command
var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Print an obfuscated maps API key for the current hour",
	Long: `Print one obfuscated maps API key, exactly as the /get-api-key endpoint would
hand it out right now. The obfuscation rotates hourly, so a blob captured in
one hour will not decode in the next.

Use --decode to reverse a blob captured from a client.`,
	Example: `  compare-service apikey
  compare-service apikey --decode 'a1:b2:c3'`,
	Args: cobra.NoArgs,
	RunE: runAPIKey,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)

	apikeyCmd.Flags().StringVar(&apikeyDecode, "decode", "", "Decode an obfuscated blob instead of encoding")
}

func runAPIKey(cmd *cobra.Command, args []string) error {
	if apikeyDecode != "" {
		key, err := apikeys.Decode(apikeyDecode, time.Now())
		if err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
		fmt.Println(key)
		return nil
	}

	if len(cfg.MapAPIKeys()) == 0 {
		return fmt.Errorf("MAP_API_KEYS not set")
	}

	blob, err := apikeys.Obfuscate(cfg.MapAPIKeys(), time.Now())
	if err != nil {
		return fmt.Errorf("obfuscation failed: %w", err)
	}
	fmt.Println(blob)
	return nil
}
