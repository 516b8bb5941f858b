package platforms

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/types"
)

const blinkitSearchFixture = `{
  "objects": [
    {"tracking": {"widget_meta": {"title": "Showing results for atta"}}},
    {
      "tracking": {"widget_meta": {"title": "Aashirvaad Atta 5 kg", "id": 14101, "custom_data": {"price": 275}}},
      "data": {"product": {"inventory": 12, "unit": "5 kg", "rfc_actions_v2": {"default": [{"remove_from_cart": {"cart_item": {"image_url": "https://cdn.grofers.com/app/images/products/sliding_image/14101a.jpg"}}}]}}}
    },
    {
      "tracking": {"widget_meta": {"title": "Fortune Atta 5 kg", "id": 22210, "custom_data": {"price": 245}}},
      "data": {"product": {"inventory": 0, "unit": "5 kg", "rfc_actions_v2": {"default": [{"remove_from_cart": {"cart_item": {"image_url": "https://cdn.grofers.com/app/images/products/sliding_image/22210a.jpg"}}}]}}}
    },
    {
      "tracking": {"widget_meta": {"title": "Patanjali Atta 10 kg", "id": 33105, "custom_data": {"price": 410}}},
      "data": {"product": {"inventory": 8, "unit": "10 kg"}}
    }
  ]
}`

func TestParseBlinkitConfig(t *testing.T) {
	body := []byte(`<script>window.grofers.CONFIG = {"requestKey":"rk-123","appVersion":52434,"flags":{"web":1}};window.grofers.BOOT = {};</script>`)

	requestKey, appVersion, err := parseBlinkitConfig(body)
	require.NoError(t, err)
	assert.Equal(t, "rk-123", requestKey)
	assert.Equal(t, "52434", appVersion)
}

func TestParseBlinkitConfigMissingMarker(t *testing.T) {
	_, _, err := parseBlinkitConfig([]byte("<html>no config here</html>"))
	require.Error(t, err)
}

func TestBlinkitParseSearch(t *testing.T) {
	h := NewBlinkit(nil, testLogger())

	listings, err := h.parseSearch([]byte(blinkitSearchFixture))
	require.NoError(t, err)
	require.Len(t, listings, 1)

	got := listings[0]
	assert.Equal(t, types.PlatformBlinkit, got.Platform)
	assert.Equal(t, "Aashirvaad Atta 5 kg", got.Name)
	require.NotNil(t, got.Price)
	assert.Equal(t, 275, *got.Price)
	assert.Equal(t, "https://cdn.grofers.com/app/images/products/sliding_image/14101a.jpg", got.ImageURL)
	assert.Equal(t, "https://blinkit.com/prn/aashirvaad-atta-5-kg/prid/14101", got.ProductURL)
	assert.Equal(t, "5 kg", got.RawQuantity)
}

func TestBlinkitAcquireThenSearch(t *testing.T) {
	fp := newFakeProxy(t)

	fp.handle("https://blinkit.com/v2/accounts/auth_key/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rk-9", r.Header.Get("req_key"))
		assert.Contains(t, r.Header.Get("Cookies"), "gr_1_deviceId=dev-7")
		w.Write([]byte(`{"success":true,"auth_key":"ak-5"}`))
	})
	fp.handle("https://blinkit.com/v6/search/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("url"), "q=atta")
		assert.Contains(t, r.URL.Query().Get("url"), "search_type=6")
		assert.Equal(t, "ak-5", r.Header.Get("auth_key"))
		assert.Equal(t, "dev-7", r.Header.Get("device_id"))
		assert.Equal(t, "consumer_web", r.Header.Get("app_client"))
		assert.Equal(t, "52434", r.Header.Get("app_version"))
		assert.NotEmpty(t, r.Header.Get("session_uuid"))

		cookie := r.Header.Get("cookie")
		assert.Contains(t, cookie, "__cfduid=x1")
		assert.Contains(t, cookie, "gr_1_lat=12.9716")
		assert.Contains(t, cookie, "gr_1_lon=77.5946")
		assert.Contains(t, cookie, "gr_1_locality=Bengaluru")
		assert.Contains(t, cookie, "gr_1_landmark=")

		w.Write([]byte(blinkitSearchFixture))
	})
	fp.handle("https://blinkit.com", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Zr-Cookies", "gr_1_deviceId=dev-7; __cfduid=x1")
		w.Write([]byte(`window.grofers.CONFIG = {"requestKey":"rk-9","appVersion":52434};window.grofers.BOOT = {};`))
	})

	h := NewBlinkit(fp.client(), testLogger())
	h.retry = fastRetry()

	loc := geo.Location{
		Lat:              12.9716,
		Lon:              77.5946,
		FormattedAddress: "MG Road, Bengaluru, Karnataka 560001, India",
		Locality:         "Bengaluru",
	}
	listings, cred, err := h.Search(context.Background(), "atta", loc, nil)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	bc, ok := cred.(*BlinkitCredential)
	require.True(t, ok)
	assert.Equal(t, "dev-7", bc.DeviceID)
	assert.Equal(t, "ak-5", bc.AuthKey)
	assert.Equal(t, "52434", bc.AppVersion)
	assert.Equal(t, "x1", bc.Cookies["__cfduid"])
	assert.Equal(t, 12.9716, bc.Lat)
}

func TestBlinkitAcquireRefusedKey(t *testing.T) {
	fp := newFakeProxy(t)

	fp.handle("https://blinkit.com/v2/accounts/auth_key/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})
	fp.handle("https://blinkit.com", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Zr-Cookies", "gr_1_deviceId=dev-7")
		w.Write([]byte(`window.grofers.CONFIG = {"requestKey":"rk-9","appVersion":52434};`))
	})

	h := NewBlinkit(fp.client(), testLogger())
	h.retry = fastRetry()

	listings, cred, err := h.Search(context.Background(), "atta", geo.Location{Lat: 1, Lon: 2}, nil)

	require.Error(t, err)
	var acqErr *CredentialAcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, "auth key", acqErr.Step)
	assert.Nil(t, cred)
	assert.Empty(t, listings)
}
