package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description string `json:"description"`
	} `json:"predictions"`
}

// Autocomplete returns place suggestions for a partial address, deduplicated
// while preserving the provider's order. ZERO_RESULTS yields an empty slice,
// not an error.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("key", c.pickKey())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/maps/api/place/autocomplete/json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	var body autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("autocomplete decode: %w", err)
	}

	if body.Status == "ZERO_RESULTS" {
		return []string{}, nil
	}
	if body.Status != "OK" {
		return nil, &GeocodeError{Status: body.Status, Message: body.ErrorMessage}
	}

	seen := make(map[string]bool, len(body.Predictions))
	suggestions := make([]string, 0, len(body.Predictions))
	for _, p := range body.Predictions {
		if seen[p.Description] {
			continue
		}
		seen[p.Description] = true
		suggestions = append(suggestions, p.Description)
	}
	return suggestions, nil
}
