package platforms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/types"
)

const dmartSearchFixture = `{
  "products": [
    {
      "name": "Fortune Chakki Fresh Atta",
      "seo_token_ntk": "fortune-chakki-fresh-atta-5kg",
      "sKUs": [
        {"priceSALE": "245", "productImageKey": "FO1021", "imgCode": "P01", "variantTextValue": "5 kg"},
        {"priceSALE": "470", "productImageKey": "FO1022", "imgCode": "P01", "variantTextValue": "10 kg"}
      ]
    },
    {
      "name": "Aashirvaad Shudh Chakki Atta",
      "seo_token_ntk": "aashirvaad-shudh-chakki-atta",
      "sKUs": [
        {"priceSALE": 410, "productImageKey": "AS2210", "imgCode": "R02", "variantTextValue": "10 kg"}
      ]
    },
    {
      "name": "",
      "seo_token_ntk": "nameless",
      "sKUs": [{"priceSALE": "99", "productImageKey": "X", "imgCode": "Y", "variantTextValue": "1 kg"}]
    },
    {
      "name": "No SKU Product",
      "seo_token_ntk": "no-sku",
      "sKUs": []
    }
  ]
}`

func TestDMartParseSearch(t *testing.T) {
	h := NewDMart(nil, testLogger())

	listings, err := h.parseSearch([]byte(dmartSearchFixture))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, types.PlatformDMart, first.Platform)
	assert.Equal(t, "Fortune Chakki Fresh Atta", first.Name)
	require.NotNil(t, first.Price)
	assert.Equal(t, 245, *first.Price)
	assert.Equal(t, "https://cdn.dmart.in/images/products/FO1021_P01_B.jpg", first.ImageURL)
	assert.Equal(t, "https://www.dmart.in/product/fortune-chakki-fresh-atta-5kg", first.ProductURL)
	assert.Equal(t, "5 kg", first.RawQuantity)

	// Numeric price field decodes the same as the quoted form.
	second := listings[1]
	require.NotNil(t, second.Price)
	assert.Equal(t, 410, *second.Price)
	assert.Equal(t, "10 kg", second.RawQuantity)
}

func TestDMartParseSearchMalformed(t *testing.T) {
	h := NewDMart(nil, testLogger())

	_, err := h.parseSearch([]byte(`{"products": "nope"}`))
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestDMartAcquireThenSearch(t *testing.T) {
	fp := newFakeProxy(t)

	fp.handle("https://digital.dmart.in/api/v2/pincodes/details", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "place-blr-1", req["uniqueId"])
		assert.Equal(t, "GA", req["apiMode"])
		w.Write([]byte(`{"isPincodeServiceable": "true", "storeDetails": []}`))
	})
	fp.handle("https://digital.dmart.in/api/v3/search/", func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		assert.Contains(t, target, "/api/v3/search/chakki%20atta?")
		assert.Contains(t, target, "channel=web")
		assert.Contains(t, target, "page=1")
		assert.Contains(t, target, "size=100")
		assert.Contains(t, target, "storeId=10680")
		w.Write([]byte(dmartSearchFixture))
	})

	h := NewDMart(fp.client(), testLogger())
	h.retry = fastRetry()

	loc := geo.Location{Lat: 12.9716, Lon: 77.5946, PlaceID: "place-blr-1"}
	listings, cred, err := h.Search(context.Background(), "chakki atta", loc, nil)
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	dc, ok := cred.(*DMartCredential)
	require.True(t, ok)
	assert.Equal(t, "place-blr-1", dc.PlaceID)
	assert.True(t, dc.Serviceable)
}

func TestDMartSearchNonServiceable(t *testing.T) {
	fp := newFakeProxy(t)

	fp.handle("https://digital.dmart.in/api/v2/pincodes/details", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isPincodeServiceable": "false"}`))
	})

	h := NewDMart(fp.client(), testLogger())
	h.retry = fastRetry()

	listings, cred, err := h.Search(context.Background(), "atta", geo.Location{PlaceID: "place-out"}, nil)

	// A refusal is a clean empty result carrying the marker credential.
	require.NoError(t, err)
	assert.Empty(t, listings)
	dc, ok := cred.(*DMartCredential)
	require.True(t, ok)
	assert.False(t, dc.Serviceable)
	assert.Equal(t, "place-out", dc.PlaceID)
	assert.Equal(t, 1, fp.callCount())
}

func TestDMartSearchSkipsMarkedLocation(t *testing.T) {
	fp := newFakeProxy(t)

	h := NewDMart(fp.client(), testLogger())
	h.retry = fastRetry()

	marker := &DMartCredential{PlaceID: "place-out", Serviceable: false}
	listings, cred, err := h.Search(context.Background(), "atta", geo.Location{PlaceID: "place-out"}, marker)

	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Same(t, marker, cred)
	assert.Zero(t, fp.callCount(), "marked location must not hit the proxy")
}
