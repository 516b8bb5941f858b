package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

const (
	instamartBase           = "https://www.swiggy.com"
	instamartLocationURL    = instamartBase + "/api/instamart/home/select-location"
	instamartSearchURL      = instamartBase + "/api/instamart/search"
	instamartSearchLanding  = instamartBase + "/instamart/search/"
	instamartImageBase      = "https://instamart-media-assets.swiggy.com/swiggy/image/upload/"
	instamartBuildVersion   = "2.258.0"
	instamartMatcherLetters = "0123456789abcdefg"

	// instamartNonServiceableMsg is the exact status message Swiggy returns
	// for locations outside its delivery areas.
	instamartNonServiceableMsg = "Sorry! We do not deliver to this location yet."

	// instamartOrderAttribution is sent pre-encoded, both as a header and as
	// a cookie, exactly as the web client does.
	instamartOrderAttribution = "{%22entryId%22:%22BANNER-undefined%22%2C%22entryName%22:%22store-menu-items-instamart%22}"
)

// Instamart drives Swiggy Instamart. Selecting a delivery location resolves
// the dark-store pair that searches must be scoped to.
type Instamart struct {
	baseHandler
}

func NewInstamart(client *proxy.Client, logger *zerolog.Logger) *Instamart {
	return &Instamart{baseHandler: newBaseHandler(types.PlatformInstamart, client, logger)}
}

func instamartBaseHeaders() map[string]string {
	return map[string]string{
		"accept":             "*/*",
		"accept-language":    "en-US,en;q=0.9",
		"content-type":       "application/json",
		"imOrderAttribution": instamartOrderAttribution,
		"user-agent":         userAgent,
		"x-build-version":    instamartBuildVersion,
	}
}

// newMatcher returns the random request matcher Swiggy's web client attaches
// to API calls.
func newMatcher() string {
	b := make([]byte, 23)
	for i := range b {
		b[i] = instamartMatcherLetters[rand.Intn(len(instamartMatcherLetters))]
	}
	return string(b)
}

func (h *Instamart) Acquire(ctx context.Context, loc geo.Location) (Credential, error) {
	session := newSessionID()
	cookies := map[string]string{"imOrderAttribution": instamartOrderAttribution}

	resp, err := h.doStep(ctx, "landing", &session, func(sessionID string) proxy.Request {
		return proxy.Request{
			Method:    "GET",
			TargetURL: instamartSearchLanding,
			Headers:   instamartBaseHeaders(),
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	locationBody, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"lat":        loc.Lat,
			"lng":        loc.Lon,
			"address":    loc.FormattedAddress,
			"addressId":  "",
			"annotation": loc.FormattedAddress,
			"clientId":   "INSTAMART-APP",
		},
	})
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "select location", Err: err}
	}
	resp, err = h.doStep(ctx, "select location", &session, func(sessionID string) proxy.Request {
		headers := instamartBaseHeaders()
		headers["matcher"] = newMatcher()
		headers["referer"] = instamartBase + "/instamart"
		headers["Cookie"] = proxy.FormatCookieHeader(cookies)
		return proxy.Request{
			Method:    "POST",
			TargetURL: instamartLocationURL,
			Headers:   headers,
			Body:      locationBody,
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	var out struct {
		StatusMessage string `json:"statusMessage"`
		Data          struct {
			StoreID       flexString `json:"storeId"`
			StoresDetails []struct {
				ID flexString `json:"id"`
			} `json:"storesDetails"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "select location", Err: err}
	}
	if out.StatusMessage == instamartNonServiceableMsg {
		marker := &InstamartCredential{Lat: loc.Lat, Lon: loc.Lon, Serviceable: types.BoolPtr(false)}
		return marker, &NonServiceableError{Platform: h.platform}
	}
	primary := out.Data.StoreID.String()
	if primary == "" {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "select location", Err: errors.New("no store id for location")}
	}
	secondary := ""
	if len(out.Data.StoresDetails) > 1 {
		secondary = out.Data.StoresDetails[1].ID.String()
	}

	userLocation, err := json.Marshal(struct {
		Lat        float64 `json:"lat"`
		Lng        float64 `json:"lng"`
		Address    string  `json:"address"`
		ID         string  `json:"id"`
		Annotation string  `json:"annotation"`
		Name       string  `json:"name"`
	}{loc.Lat, loc.Lon, loc.FormattedAddress, "", loc.FormattedAddress, ""})
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "select location", Err: err}
	}
	cookies["userLocation"] = url.PathEscape(string(userLocation))

	h.log.Debug().Str("store_id", primary).Msg("Credentials acquired")
	return &InstamartCredential{
		Cookies:          cookies,
		PrimaryStoreID:   primary,
		SecondaryStoreID: secondary,
		Lat:              loc.Lat,
		Lon:              loc.Lon,
	}, nil
}

func (h *Instamart) Search(ctx context.Context, query string, loc geo.Location, cred Credential) ([]types.Listing, Credential, error) {
	return h.searchWithRetry(ctx, loc, cred,
		func(ctx context.Context) (Credential, error) {
			return h.Acquire(ctx, loc)
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			ic, ok := c.(*InstamartCredential)
			if !ok {
				return nil, errWrongCredential
			}
			return h.searchOnce(ctx, query, ic)
		})
}

func (h *Instamart) searchOnce(ctx context.Context, query string, cred *InstamartCredential) ([]types.Listing, error) {
	params := url.Values{}
	params.Set("pageNumber", "0")
	params.Set("searchResultsOffset", "0")
	params.Set("limit", "40")
	params.Set("query", query)
	params.Set("ageConsent", "false")
	params.Set("layoutId", "2671")
	params.Set("pageType", "INSTAMART_AUTO_SUGGEST_PAGE")
	params.Set("isPreSearchTag", "false")
	params.Set("highConfidencePageNo", "0")
	params.Set("lowConfidencePageNo", "0")
	params.Set("voiceSearchTrackingId", "")
	params.Set("storeId", cred.PrimaryStoreID)
	params.Set("primaryStoreId", cred.PrimaryStoreID)
	params.Set("secondaryStoreId", cred.SecondaryStoreID)

	headers := instamartBaseHeaders()
	headers["matcher"] = newMatcher()
	headers["referer"] = instamartBase + "/instamart/search?custom_back=true&query=" + url.QueryEscape(query)
	headers["Cookie"] = proxy.FormatCookieHeader(cred.Cookies)

	resp, err := h.proxy.Do(ctx, proxy.Request{
		Method:    "POST",
		TargetURL: instamartSearchURL + "?" + params.Encode(),
		Headers:   headers,
		Body:      []byte(`{"facets":{},"sortAttribute":""}`),
	})
	if err != nil {
		return nil, err
	}
	return h.parseSearch(resp.Body)
}

type instamartVariation struct {
	DisplayName string     `json:"display_name"`
	Quantity    string     `json:"quantity"`
	StoreID     flexString `json:"store_id"`
	Images      []string   `json:"images"`
	Price       struct {
		OfferPrice flexString `json:"offer_price"`
	} `json:"price"`
	Inventory struct {
		InStock bool `json:"in_stock"`
	} `json:"inventory"`
}

// parseSearch flattens the first widget's items. Every variation of an item
// is a listing of its own since pack sizes are priced independently.
func (h *Instamart) parseSearch(body []byte) ([]types.Listing, error) {
	var page struct {
		Data struct {
			Widgets []struct {
				Data []struct {
					ProductID  flexString           `json:"product_id"`
					Variations []instamartVariation `json:"variations"`
				} `json:"data"`
			} `json:"widgets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ParseError{Platform: h.platform, Msg: err.Error()}
	}
	if len(page.Data.Widgets) == 0 {
		return []types.Listing{}, nil
	}

	var listings []types.Listing
	for _, item := range page.Data.Widgets[0].Data {
		for _, v := range item.Variations {
			if !v.Inventory.InStock || v.DisplayName == "" {
				continue
			}
			image := ""
			if len(v.Images) > 0 {
				image = instamartImageBase + v.Images[0]
			}
			listings = append(listings, types.Listing{
				Platform:    h.platform,
				Name:        v.DisplayName,
				Price:       types.ParsePrice(v.Price.OfferPrice.String()),
				ImageURL:    image,
				ProductURL:  instamartBase + "/instamart/item/" + item.ProductID.String() + "?storeId=" + v.StoreID.String(),
				RawQuantity: v.Quantity,
			})
		}
	}
	return listings, nil
}
