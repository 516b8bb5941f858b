package platforms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/types"
)

const zeptoSearchFixture = `{
  "layout": [
    {"widgetName": "SEARCH_HEADER", "data": {}},
    {
      "widgetName": "SEARCHED_PRODUCTS_HIGH_CONFIDENCE",
      "data": {"resolver": {"data": {"items": [
        {
          "productResponse": {
            "outOfStock": false,
            "superSaverSellingPrice": 5400,
            "product": {"name": "Amul Taaza Toned Milk"},
            "productVariant": {
              "id": "pv-101",
              "formattedPacksize": "1 L",
              "images": [{"path": "tr:w-400/cms/product_variant/abc123.jpeg"}]
            }
          }
        },
        {
          "productResponse": {
            "outOfStock": true,
            "superSaverSellingPrice": 2800,
            "product": {"name": "Sold Out Milk"},
            "productVariant": {"id": "pv-102", "formattedPacksize": "500 ml", "images": []}
          }
        },
        {
          "productResponse": {
            "outOfStock": false,
            "superSaverSellingPrice": 0,
            "product": {"name": "Nandini Curd"},
            "productVariant": {"id": "pv-103", "formattedPacksize": "400 g", "images": []}
          }
        }
      ]}}}
    }
  ]
}`

func TestZeptoParseSearch(t *testing.T) {
	h := NewZepto(nil, testLogger())

	listings, err := h.parseSearch([]byte(zeptoSearchFixture))
	require.NoError(t, err)
	require.Len(t, listings, 2, "out-of-stock items are dropped")

	first := listings[0]
	assert.Equal(t, types.PlatformZepto, first.Platform)
	assert.Equal(t, "Amul Taaza Toned Milk", first.Name)
	require.NotNil(t, first.Price)
	assert.Equal(t, 54, *first.Price, "selling price is paise on the wire")
	assert.Equal(t, "https://cdn.zeptonow.com/production/ik-seo/tr:w-400/cms/product_variant/abc123/Amul-Taaza-Toned-Milk.jpeg", first.ImageURL)
	assert.Equal(t, "https://www.zeptonow.com/pn/amul-taaza-toned-milk/pvid/pv-101", first.ProductURL)
	assert.Equal(t, "1 L", first.RawQuantity)

	// A zero selling price means the storefront hid it: price stays unknown.
	second := listings[1]
	assert.Equal(t, "Nandini Curd", second.Name)
	assert.Nil(t, second.Price)
	assert.Empty(t, second.ImageURL)
}

func TestZeptoImageURL(t *testing.T) {
	tests := []struct {
		name string
		path string
		prod string
		want string
	}{
		{
			name: "path with extension",
			path: "cms/product_variant/abc123.jpeg",
			prod: "Amul Milk 500 ml",
			want: "https://cdn.zeptonow.com/production/ik-seo/cms/product_variant/abc123/Amul-Milk-500-ml.jpeg",
		},
		{
			name: "path without extension",
			path: "cms/product_variant/abc123",
			prod: "Amul Milk",
			want: "https://cdn.zeptonow.com/production/ik-seo/cms/product_variant/abc123/Amul-Milk",
		},
		{
			name: "punctuated name",
			path: "cms/pv/x.png",
			prod: "Haldiram's Bhujia (Large)",
			want: "https://cdn.zeptonow.com/production/ik-seo/cms/pv/x/Haldiram-s-Bhujia-Large-.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zeptoImageURL(tt.path, tt.prod))
		})
	}
}

func TestZeptoAcquireThenSearch(t *testing.T) {
	fp := newFakeProxy(t)

	serviceability := url.QueryEscape(`{"primaryStore":{"serviceable":true,"storeId":"st-77"}}`)
	fp.handle("https://www.zeptonow.com/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("rsc"))
		cookie := r.Header.Get("cookie")
		assert.Contains(t, cookie, "user_position=")
		assert.Contains(t, cookie, "latitude=12.9716")
		assert.Contains(t, cookie, "longitude=77.5946")

		w.Header().Set("Zr-Cookies",
			"serviceability="+serviceability+"; device_id=dv-9; session_id=ss-9; XSRF-TOKEN=xt-9")
		w.Write([]byte("ok"))
	})
	fp.handle("https://api.zeptonow.com/api/v3/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "st-77", r.Header.Get("storeid"))
		assert.Equal(t, "dv-9", r.Header.Get("deviceid"))
		assert.Equal(t, "ss-9", r.Header.Get("sessionid"))
		assert.Equal(t, "xt-9", r.Header.Get("x-xsrf-token"))
		assert.Equal(t, `{"st-77":10}`, r.Header.Get("store_etas"))
		assert.Equal(t, "12.59.0", r.Header.Get("appversion"))
		assert.Equal(t, "ZEPTO", r.Header.Get("tenant"))

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Query         string `json:"query"`
			PageNumber    int    `json:"pageNumber"`
			IntentID      string `json:"intentId"`
			Mode          string `json:"mode"`
			UserSessionID string `json:"userSessionId"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "amul milk", req.Query)
		assert.Equal(t, 1, req.PageNumber)
		assert.NotEmpty(t, req.IntentID)
		assert.Equal(t, "AUTOSUGGEST", req.Mode)
		assert.Equal(t, "ss-9", req.UserSessionID)

		w.Write([]byte(zeptoSearchFixture))
	})

	h := NewZepto(fp.client(), testLogger())
	h.retry = fastRetry()

	loc := geo.Location{Lat: 12.9716, Lon: 77.5946}
	listings, cred, err := h.Search(context.Background(), "amul milk", loc, nil)
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	zc, ok := cred.(*ZeptoCredential)
	require.True(t, ok)
	assert.Equal(t, "st-77", zc.StoreID)
	assert.Equal(t, "dv-9", zc.DeviceID)
	assert.Equal(t, "ss-9", zc.SessionID)
	assert.Equal(t, "xt-9", zc.XSRFToken)
	assert.Equal(t, 12.9716, zc.Lat)
}

func TestZeptoSearchNonServiceable(t *testing.T) {
	fp := newFakeProxy(t)

	serviceability := url.QueryEscape(`{"primaryStore":{"serviceable":false,"storeId":""}}`)
	fp.handle("https://www.zeptonow.com/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Zr-Cookies", "serviceability="+serviceability)
		w.Write([]byte("ok"))
	})

	h := NewZepto(fp.client(), testLogger())
	h.retry = fastRetry()

	loc := geo.Location{Lat: 26.2, Lon: 92.9}
	listings, cred, err := h.Search(context.Background(), "milk", loc, nil)

	require.NoError(t, err)
	assert.Empty(t, listings)
	zc, ok := cred.(*ZeptoCredential)
	require.True(t, ok)
	require.NotNil(t, zc.Serviceable)
	assert.False(t, *zc.Serviceable)
	assert.Equal(t, 1, fp.callCount())
}

func TestZeptoAcquireMissingServiceabilityCookie(t *testing.T) {
	fp := newFakeProxy(t)

	fp.handle("https://www.zeptonow.com/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	h := NewZepto(fp.client(), testLogger())
	h.retry = fastRetry()

	_, err := h.Acquire(context.Background(), geo.Location{Lat: 1, Lon: 2})
	require.Error(t, err)
	var acqErr *CredentialAcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, "store assignment", acqErr.Step)
}

func TestZeptoAcquireIncompleteSessionCookies(t *testing.T) {
	fp := newFakeProxy(t)

	serviceability := url.QueryEscape(`{"primaryStore":{"serviceable":true,"storeId":"st-77"}}`)
	fp.handle("https://www.zeptonow.com/search", func(w http.ResponseWriter, r *http.Request) {
		// No session_id or XSRF token issued.
		w.Header().Set("Zr-Cookies", "serviceability="+serviceability+"; device_id=dv-1")
		w.Write([]byte("ok"))
	})

	h := NewZepto(fp.client(), testLogger())
	h.retry = fastRetry()

	_, err := h.Acquire(context.Background(), geo.Location{Lat: 1, Lon: 2})
	require.Error(t, err)
	var acqErr *CredentialAcquisitionError
	require.ErrorAs(t, err, &acqErr)
}
