package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

const (
	bigbasketBase       = "https://www.bigbasket.com"
	bigbasketHeaderURL  = bigbasketBase + "/ui-svc/v2/header"
	bigbasketAddressURL = bigbasketBase + "/member-svc/v2/member/current-delivery-address/"

	// avail_status code for products that can actually be added to a cart.
	bigbasketInStock = "001"
)

// The Next.js runtime config is embedded in the landing page markup.
var bigbasketBuildIDRe = regexp.MustCompile(`"buildId"\s*:\s*"([^"]+)"`)

var errMissingCSRF = errors.New("csurftoken cookie not issued")

// BigBasket drives bigbasket.com. Searches go through the site's Next.js
// data route, so the credential must carry the current deployment's build
// id; a stale build id answers 404 and forces a fresh handshake.
type BigBasket struct {
	baseHandler
}

func NewBigBasket(client *proxy.Client, logger *zerolog.Logger) *BigBasket {
	return &BigBasket{baseHandler: newBaseHandler(types.PlatformBigBasket, client, logger)}
}

// bigbasketBrowserHeaders is the desktop browser identity presented during
// the handshake and carried in the credential for searches.
func bigbasketBrowserHeaders() map[string]string {
	return map[string]string{
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"accept-language":           "en-US,en;q=0.9",
		"cache-control":             "max-age=0",
		"priority":                  "u=0, i",
		"sec-ch-ua":                 `"Chromium";v="134", "Not:A-Brand";v="24", "Google Chrome";v="134"`,
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-platform":        `"Windows"`,
		"sec-fetch-dest":            "document",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-site":            "none",
		"sec-fetch-user":            "?1",
		"upgrade-insecure-requests": "1",
		"user-agent":                userAgent,
	}
}

// bigbasketTrackerCookies are the analytics cookies the address endpoint
// checks for. The values are arbitrary; only the names matter upstream.
func bigbasketTrackerCookies() map[string]string {
	return map[string]string{
		"ufi":                "1",
		"bigbasket.com":      uuid.NewString(),
		"_gcl_au":            "1.1.1928979171.1740814999",
		"jarvis-id":          uuid.NewString(),
		"adb":                "0",
		"_fbp":               "fb.1.1740815004456.342188349655800112",
		"_ga_FRRYG5VKHX":     "GS1.1.1740815004.1.1.1740815129.31.0.0",
		"_ga":                "GA1.1.1918088653.1740815005",
		"_gid":               "GA1.2.1022496712.1740815005",
		"_gat_UA-27455376-1": "1",
	}
}

// Acquire walks the four-step handshake: landing page for session cookies,
// header service for the CSRF token, delivery address registration so prices
// come from the right hub, then the landing page again for the build id.
func (h *BigBasket) Acquire(ctx context.Context, loc geo.Location) (Credential, error) {
	session := newSessionID()
	browser := bigbasketBrowserHeaders()
	cookies := make(map[string]string)

	resp, err := h.doStep(ctx, "landing", &session, func(sessionID string) proxy.Request {
		return proxy.Request{
			Method:    "GET",
			TargetURL: bigbasketBase + "/",
			Headers:   cloneHeaders(browser),
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	headerParams := url.Values{}
	headerParams.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))
	headerParams.Set("send_address_set_by_user", "true")
	resp, err = h.doStep(ctx, "csrf token", &session, func(sessionID string) proxy.Request {
		headers := cloneHeaders(browser)
		headers["accept"] = "*/*"
		headers["content-type"] = "application/json"
		headers["x-channel"] = "BB-WEB"
		headers["x-tracker"] = uuid.NewString()
		headers["Cookie"] = proxy.FormatCookieHeader(cookies)
		return proxy.Request{
			Method:    "GET",
			TargetURL: bigbasketHeaderURL + "?" + headerParams.Encode(),
			Headers:   headers,
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	csrf := cookies["csurftoken"]
	if csrf == "" {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "csrf token", Err: errMissingCSRF}
	}

	addressBody, err := json.Marshal(map[string]any{
		"lat":                loc.Lat,
		"long":               loc.Lon,
		"return_hub_cookies": false,
		"contact_zipcode":    loc.PostalCode,
	})
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "delivery address", Err: err}
	}
	addressCookies := proxy.MergeCookies(proxy.MergeCookies(nil, cookies), bigbasketTrackerCookies())
	resp, err = h.doStep(ctx, "delivery address", &session, func(sessionID string) proxy.Request {
		headers := cloneHeaders(browser)
		headers["accept"] = "*/*"
		headers["content-type"] = "application/json"
		headers["x-caller"] = "UI-KIRK"
		headers["x-channel"] = "BB-WEB"
		headers["x-csurftoken"] = csrf
		headers["x-entry-context"] = "bb-b2c"
		headers["x-entry-context-id"] = "100"
		headers["x-requested-with"] = "XMLHttpRequest"
		headers["x-tracker"] = uuid.NewString()
		headers["Cookie"] = proxy.FormatCookieHeader(addressCookies)
		return proxy.Request{
			Method:    "PUT",
			TargetURL: bigbasketAddressURL,
			Headers:   headers,
			Body:      addressBody,
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	resp, err = h.doStep(ctx, "build id", &session, func(sessionID string) proxy.Request {
		headers := cloneHeaders(browser)
		headers["Cookie"] = proxy.FormatCookieHeader(cookies)
		return proxy.Request{
			Method:    "GET",
			TargetURL: bigbasketBase + "/",
			Headers:   headers,
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	match := bigbasketBuildIDRe.FindSubmatch(resp.Body)
	if match == nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "build id", Err: errors.New("build id not found in page config")}
	}

	h.log.Debug().Str("build_id", string(match[1])).Msg("Credentials acquired")
	return &BigBasketCredential{
		AuthCookies: cookies,
		Headers:     browser,
		BuildID:     string(match[1]),
		Lat:         loc.Lat,
		Lon:         loc.Lon,
	}, nil
}

func (h *BigBasket) Search(ctx context.Context, query string, loc geo.Location, cred Credential) ([]types.Listing, Credential, error) {
	return h.searchWithRetry(ctx, loc, cred,
		func(ctx context.Context) (Credential, error) {
			return h.Acquire(ctx, loc)
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			bb, ok := c.(*BigBasketCredential)
			if !ok {
				return nil, errWrongCredential
			}
			return h.searchOnce(ctx, query, bb)
		})
}

func (h *BigBasket) searchOnce(ctx context.Context, query string, cred *BigBasketCredential) ([]types.Listing, error) {
	target := fmt.Sprintf("%s/_next/data/%s/ps.json?q=%s&nc=as&listing=ps",
		bigbasketBase, url.PathEscape(cred.BuildID), url.QueryEscape(query))

	headers := cloneHeaders(cred.Headers)
	headers["accept"] = "*/*"
	headers["x-nextjs-data"] = "1"
	headers["Cookie"] = proxy.FormatCookieHeader(cred.AuthCookies)

	resp, err := h.proxy.Do(ctx, proxy.Request{
		Method:    "GET",
		TargetURL: target,
		Headers:   headers,
	})
	if err != nil {
		return nil, err
	}
	return h.parseSearch(resp.Body)
}

type bigbasketProduct struct {
	Desc        string `json:"desc"`
	W           string `json:"w"`
	AbsoluteURL string `json:"absolute_url"`
	Pricing     struct {
		Discount struct {
			SubscriptionPrice flexString `json:"subscription_price"`
		} `json:"discount"`
	} `json:"pricing"`
	Images []struct {
		S string `json:"s"`
	} `json:"images"`
	Availability struct {
		AvailStatus string `json:"avail_status"`
	} `json:"availability"`
	Children []bigbasketProduct `json:"children"`
}

type bigbasketSearchPage struct {
	PageProps struct {
		SSRData struct {
			Tabs []struct {
				ProductInfo struct {
					Products []bigbasketProduct `json:"products"`
				} `json:"product_info"`
			} `json:"tabs"`
		} `json:"SSRData"`
	} `json:"pageProps"`
}

// parseSearch flattens the Next.js search payload. Pack-size variants arrive
// nested under children and count as listings in their own right.
func (h *BigBasket) parseSearch(body []byte) ([]types.Listing, error) {
	var page bigbasketSearchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ParseError{Platform: h.platform, Msg: err.Error()}
	}
	if len(page.PageProps.SSRData.Tabs) == 0 {
		return []types.Listing{}, nil
	}

	var listings []types.Listing
	for _, p := range page.PageProps.SSRData.Tabs[0].ProductInfo.Products {
		h.appendProduct(&listings, p)
		for _, child := range p.Children {
			h.appendProduct(&listings, child)
		}
	}
	return listings, nil
}

func (h *BigBasket) appendProduct(listings *[]types.Listing, p bigbasketProduct) {
	if p.Availability.AvailStatus != bigbasketInStock {
		return
	}
	if p.Desc == "" || p.AbsoluteURL == "" {
		return
	}
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0].S
	}
	path := p.AbsoluteURL
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	*listings = append(*listings, types.Listing{
		Platform:    h.platform,
		Name:        p.Desc,
		Price:       types.ParsePrice(p.Pricing.Discount.SubscriptionPrice.String()),
		ImageURL:    image,
		ProductURL:  bigbasketBase + path,
		RawQuantity: p.W,
	})
}
