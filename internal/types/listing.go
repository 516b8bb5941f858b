package types

import "strings"

// Platform identifies one upstream quick-commerce storefront.
type Platform string

const (
	PlatformBigBasket Platform = "BIGBASKET"
	PlatformBlinkit   Platform = "BLINKIT"
	PlatformInstamart Platform = "INSTAMART"
	PlatformDMart     Platform = "DMART"
	PlatformZepto     Platform = "ZEPTO"
)

// Platforms lists every supported storefront in canonical order. Listing
// concatenation follows this order so that group output is deterministic
// regardless of which search task finishes first.
var Platforms = []Platform{
	PlatformBigBasket,
	PlatformBlinkit,
	PlatformInstamart,
	PlatformDMart,
	PlatformZepto,
}

// StoreName returns the display name used in API responses.
func (p Platform) StoreName() string {
	switch p {
	case PlatformBigBasket:
		return "Bigbasket"
	case PlatformBlinkit:
		return "Blinkit"
	case PlatformInstamart:
		return "Instamart"
	case PlatformDMart:
		return "Dmart"
	case PlatformZepto:
		return "Zepto"
	}
	return string(p)
}

// IsValid reports whether p is one of the supported storefronts.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformBigBasket, PlatformBlinkit, PlatformInstamart, PlatformDMart, PlatformZepto:
		return true
	}
	return false
}

// Listing is the uniform product schema every storefront handler produces.
// ProductURL uniquely addresses the listing within its platform.
type Listing struct {
	Platform    Platform `json:"platform"`
	Name        string   `json:"name"`
	Price       *int     `json:"price"` // rupees; nil when the storefront value did not parse
	ImageURL    string   `json:"imageUrl"`
	ProductURL  string   `json:"productUrl"`
	RawQuantity string   `json:"rawQuantity"`
}

// ParsePrice extracts the integer rupee amount from a storefront price string.
// Thousands separators are stripped and the first run of digits wins: "1,299.00"
// parses as 1299 and "295.50" as 295. Returns nil when no digits are present.
func ParsePrice(raw string) *int {
	cleaned := strings.ReplaceAll(raw, ",", "")

	start := -1
	for i, r := range cleaned {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start == -1 {
		return nil
	}

	end := start
	for end < len(cleaned) && cleaned[end] >= '0' && cleaned[end] <= '9' {
		end++
	}

	n := 0
	for _, c := range []byte(cleaned[start:end]) {
		d := int(c - '0')
		if n > (1<<31-1-d)/10 {
			return nil // overflow, treat as unparseable
		}
		n = n*10 + d
	}
	return IntPtr(n)
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}
