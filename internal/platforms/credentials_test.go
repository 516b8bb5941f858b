package platforms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/types"
)

func TestCredentialValid(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		want bool
	}{
		{
			name: "bigbasket complete",
			cred: &BigBasketCredential{BuildID: "b1", AuthCookies: map[string]string{"csurftoken": "t"}},
			want: true,
		},
		{
			name: "bigbasket missing build id",
			cred: &BigBasketCredential{AuthCookies: map[string]string{"csurftoken": "t"}},
			want: false,
		},
		{
			name: "bigbasket no cookies",
			cred: &BigBasketCredential{BuildID: "b1"},
			want: false,
		},
		{
			name: "blinkit complete",
			cred: &BlinkitCredential{AuthKey: "ak", DeviceID: "d1", Cookies: map[string]string{"gr_1_deviceId": "d1"}},
			want: true,
		},
		{
			name: "blinkit missing auth key",
			cred: &BlinkitCredential{DeviceID: "d1", Cookies: map[string]string{"gr_1_deviceId": "d1"}},
			want: false,
		},
		{
			name: "instamart complete",
			cred: &InstamartCredential{PrimaryStoreID: "st1", Cookies: map[string]string{"sid": "1"}},
			want: true,
		},
		{
			name: "instamart missing store",
			cred: &InstamartCredential{Cookies: map[string]string{"sid": "1"}},
			want: false,
		},
		{
			name: "instamart non-serviceable marker",
			cred: &InstamartCredential{PrimaryStoreID: "st1", Cookies: map[string]string{"sid": "1"}, Serviceable: types.BoolPtr(false)},
			want: false,
		},
		{
			name: "dmart serviceable",
			cred: &DMartCredential{PlaceID: "p1", Serviceable: true},
			want: true,
		},
		{
			name: "dmart non-serviceable",
			cred: &DMartCredential{PlaceID: "p1"},
			want: false,
		},
		{
			name: "zepto complete",
			cred: &ZeptoCredential{StoreID: "st", DeviceID: "d", SessionID: "s", XSRFToken: "x"},
			want: true,
		},
		{
			name: "zepto missing xsrf token",
			cred: &ZeptoCredential{StoreID: "st", DeviceID: "d", SessionID: "s"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Valid())
		})
	}
}

func TestNonServiceableFor(t *testing.T) {
	dmart := &DMartCredential{PlaceID: "place-1", Serviceable: false}
	assert.True(t, dmart.NonServiceableFor(geo.Location{PlaceID: "place-1"}))
	assert.False(t, dmart.NonServiceableFor(geo.Location{PlaceID: "place-2"}))

	serviceable := &DMartCredential{PlaceID: "place-1", Serviceable: true}
	assert.False(t, serviceable.NonServiceableFor(geo.Location{PlaceID: "place-1"}))

	zepto := &ZeptoCredential{Lat: 12.9716, Lon: 77.5946, Serviceable: types.BoolPtr(false)}
	assert.True(t, zepto.NonServiceableFor(geo.Location{Lat: 12.9716, Lon: 77.5946}))
	assert.False(t, zepto.NonServiceableFor(geo.Location{Lat: 13.0827, Lon: 80.2707}))

	instamart := &InstamartCredential{Lat: 12.9716, Lon: 77.5946, Serviceable: types.BoolPtr(false)}
	assert.True(t, instamart.NonServiceableFor(geo.Location{Lat: 12.9716, Lon: 77.5946}))

	unmarked := &InstamartCredential{Lat: 12.9716, Lon: 77.5946}
	assert.False(t, unmarked.NonServiceableFor(geo.Location{Lat: 12.9716, Lon: 77.5946}))
}

func TestBundleGetSet(t *testing.T) {
	var b Bundle

	assert.Nil(t, b.Get(types.PlatformBigBasket))
	assert.Nil(t, b.Get(types.PlatformZepto))

	zepto := &ZeptoCredential{StoreID: "st", DeviceID: "d", SessionID: "s", XSRFToken: "x"}
	b.Set(zepto)
	dmart := &DMartCredential{PlaceID: "p1", Serviceable: false}
	b.Set(dmart)

	got := b.Get(types.PlatformZepto)
	require.NotNil(t, got)
	assert.Same(t, zepto, got)
	assert.Equal(t, types.PlatformZepto, got.Platform())

	assert.Same(t, dmart, b.Get(types.PlatformDMart))
	assert.Nil(t, b.Get(types.PlatformBlinkit))

	b.Set(nil)
	assert.Same(t, zepto, b.Get(types.PlatformZepto))
}

func TestBundleGetNilReceiver(t *testing.T) {
	var b *Bundle
	assert.Nil(t, b.Get(types.PlatformDMart))
}

func TestBundleJSONKeys(t *testing.T) {
	b := Bundle{
		DMart: &DMartCredential{PlaceID: "place-1", Serviceable: false},
		Zepto: &ZeptoCredential{StoreID: "st-1", DeviceID: "d-1", SessionID: "s-1", XSRFToken: "x-1", Lat: 12.9716, Lon: 77.5946},
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"DMART": {"place_id": "place-1", "serviceable": false},
		"ZEPTO": {"store_id": "st-1", "device_id": "d-1", "session_id": "s-1", "xsrf_token": "x-1", "lat": 12.9716, "lon": 77.5946}
	}`, string(data))

	var decoded Bundle
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.DMart)
	assert.False(t, decoded.DMart.Serviceable)
	require.NotNil(t, decoded.Zepto)
	assert.Equal(t, "st-1", decoded.Zepto.StoreID)
	assert.Nil(t, decoded.BigBasket)
}

func TestBundleRoundTripsEveryPlatform(t *testing.T) {
	b := Bundle{
		BigBasket: &BigBasketCredential{
			AuthCookies: map[string]string{"csurftoken": "tok"},
			Headers:     map[string]string{"user-agent": "ua"},
			BuildID:     "BUILD1",
			Lat:         12.9716,
			Lon:         77.5946,
		},
		Blinkit: &BlinkitCredential{
			DeviceID:   "dev-1",
			AppVersion: "52434",
			AuthKey:    "ak-1",
			Cookies:    map[string]string{"gr_1_deviceId": "dev-1"},
		},
		Instamart: &InstamartCredential{
			Cookies:        map[string]string{"sid": "s1"},
			PrimaryStoreID: "st-1",
		},
		DMart: &DMartCredential{PlaceID: "p1", Serviceable: true},
		Zepto: &ZeptoCredential{StoreID: "st", DeviceID: "d", SessionID: "s", XSRFToken: "x"},
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded Bundle
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, p := range types.Platforms {
		cred := decoded.Get(p)
		require.NotNil(t, cred, "missing credential for %s", p)
		assert.Equal(t, p, cred.Platform())
		assert.True(t, cred.Valid(), "credential for %s should be valid", p)
	}

	// secondary_store_id is optional and must not appear when empty
	assert.NotContains(t, string(data), "secondary_store_id")
}
