package platforms

import (
	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/types"
)

// Credential is the per-storefront session state a handler needs to search
// without redoing the acquisition handshake. Credentials round-trip through
// the API so clients can hand them back on the next request.
type Credential interface {
	Platform() types.Platform

	// Valid reports whether the credential is complete enough to attempt a
	// search with. Invalid credentials are re-acquired, not repaired.
	Valid() bool
}

// serviceabilityMarker is implemented by credentials that can record a
// storefront's refusal to deliver to a location. A marked credential
// short-circuits searches for that same location.
type serviceabilityMarker interface {
	NonServiceableFor(loc geo.Location) bool
}

// BigBasketCredential carries the cookie jar, request headers and Next.js
// build id collected during the BigBasket handshake.
type BigBasketCredential struct {
	AuthCookies map[string]string `json:"auth_cookies"`
	Headers     map[string]string `json:"headers"`
	BuildID     string            `json:"buildId"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
}

func (c *BigBasketCredential) Platform() types.Platform { return types.PlatformBigBasket }

func (c *BigBasketCredential) Valid() bool {
	return c.BuildID != "" && len(c.AuthCookies) > 0
}

// BlinkitCredential carries the device identity and auth key Blinkit issues
// per browsing session.
type BlinkitCredential struct {
	DeviceID   string            `json:"device_id"`
	AppVersion string            `json:"app_version"`
	AuthKey    string            `json:"auth_key"`
	Cookies    map[string]string `json:"cookies"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
}

func (c *BlinkitCredential) Platform() types.Platform { return types.PlatformBlinkit }

func (c *BlinkitCredential) Valid() bool {
	return c.AuthKey != "" && c.DeviceID != "" && len(c.Cookies) > 0
}

// InstamartCredential carries the Swiggy session cookies and the store ids
// resolved for a delivery location.
type InstamartCredential struct {
	Cookies          map[string]string `json:"cookies"`
	PrimaryStoreID   string            `json:"primary_store_id"`
	SecondaryStoreID string            `json:"secondary_store_id,omitempty"`
	Lat              float64           `json:"lat"`
	Lon              float64           `json:"lon"`
	Serviceable      *bool             `json:"serviceable,omitempty"`
}

func (c *InstamartCredential) Platform() types.Platform { return types.PlatformInstamart }

func (c *InstamartCredential) Valid() bool {
	if c.Serviceable != nil && !*c.Serviceable {
		return false
	}
	return c.PrimaryStoreID != "" && len(c.Cookies) > 0
}

func (c *InstamartCredential) NonServiceableFor(loc geo.Location) bool {
	return c.Serviceable != nil && !*c.Serviceable && c.Lat == loc.Lat && c.Lon == loc.Lon
}

// DMartCredential records the serviceability verdict for a place id. DMart
// searches need no session state, so the verdict is the whole credential.
type DMartCredential struct {
	PlaceID     string `json:"place_id"`
	Serviceable bool   `json:"serviceable"`
}

func (c *DMartCredential) Platform() types.Platform { return types.PlatformDMart }

func (c *DMartCredential) Valid() bool {
	return c.Serviceable && c.PlaceID != ""
}

func (c *DMartCredential) NonServiceableFor(loc geo.Location) bool {
	return !c.Serviceable && c.PlaceID == loc.PlaceID
}

// ZeptoCredential carries the store assignment and session cookies Zepto
// issues once a position is declared serviceable.
type ZeptoCredential struct {
	StoreID     string  `json:"store_id"`
	DeviceID    string  `json:"device_id"`
	SessionID   string  `json:"session_id"`
	XSRFToken   string  `json:"xsrf_token"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Serviceable *bool   `json:"serviceable,omitempty"`
}

func (c *ZeptoCredential) Platform() types.Platform { return types.PlatformZepto }

func (c *ZeptoCredential) Valid() bool {
	if c.Serviceable != nil && !*c.Serviceable {
		return false
	}
	return c.StoreID != "" && c.DeviceID != "" && c.SessionID != "" && c.XSRFToken != ""
}

func (c *ZeptoCredential) NonServiceableFor(loc geo.Location) bool {
	return c.Serviceable != nil && !*c.Serviceable && c.Lat == loc.Lat && c.Lon == loc.Lon
}

// Bundle groups at most one credential per storefront. The JSON keys are the
// platform identifiers clients see in API responses.
type Bundle struct {
	BigBasket *BigBasketCredential `json:"BIGBASKET,omitempty"`
	Blinkit   *BlinkitCredential   `json:"BLINKIT,omitempty"`
	Instamart *InstamartCredential `json:"INSTAMART,omitempty"`
	DMart     *DMartCredential     `json:"DMART,omitempty"`
	Zepto     *ZeptoCredential     `json:"ZEPTO,omitempty"`
}

// Get returns the credential stored for a platform, or nil when the bundle
// holds none. The nil checks keep a typed nil from leaking into the interface.
func (b *Bundle) Get(p types.Platform) Credential {
	if b == nil {
		return nil
	}
	switch p {
	case types.PlatformBigBasket:
		if b.BigBasket != nil {
			return b.BigBasket
		}
	case types.PlatformBlinkit:
		if b.Blinkit != nil {
			return b.Blinkit
		}
	case types.PlatformInstamart:
		if b.Instamart != nil {
			return b.Instamart
		}
	case types.PlatformDMart:
		if b.DMart != nil {
			return b.DMart
		}
	case types.PlatformZepto:
		if b.Zepto != nil {
			return b.Zepto
		}
	}
	return nil
}

// Set stores a credential in its platform's slot. Nil and unknown credential
// types are ignored.
func (b *Bundle) Set(cred Credential) {
	switch c := cred.(type) {
	case *BigBasketCredential:
		b.BigBasket = c
	case *BlinkitCredential:
		b.Blinkit = c
	case *InstamartCredential:
		b.Instamart = c
	case *DMartCredential:
		b.DMart = c
	case *ZeptoCredential:
		b.Zepto = c
	}
}
