package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

const (
	blinkitBase       = "https://blinkit.com"
	blinkitAuthKeyURL = blinkitBase + "/v2/accounts/auth_key/"
	blinkitSearchURL  = blinkitBase + "/v6/search/products"

	// blinkitConfigMarker precedes the JSON runtime config embedded in the
	// landing page markup.
	blinkitConfigMarker = "window.grofers.CONFIG = "

	blinkitRNBundleVersion = "1009003012"
	blinkitWebAppVersion   = "1008010016"
)

// Blinkit drives blinkit.com. The landing page yields a device cookie and a
// request key; exchanging the key at the accounts service yields the auth
// key every search must present.
type Blinkit struct {
	baseHandler
}

func NewBlinkit(client *proxy.Client, logger *zerolog.Logger) *Blinkit {
	return &Blinkit{baseHandler: newBaseHandler(types.PlatformBlinkit, client, logger)}
}

func blinkitBrowserHeaders() map[string]string {
	return map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
		"user-agent":      userAgent,
	}
}

func (h *Blinkit) Acquire(ctx context.Context, loc geo.Location) (Credential, error) {
	session := newSessionID()
	cookies := make(map[string]string)

	resp, err := h.doStep(ctx, "landing", &session, func(sessionID string) proxy.Request {
		return proxy.Request{
			Method:    "GET",
			TargetURL: blinkitBase,
			Headers:   blinkitBrowserHeaders(),
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	requestKey, appVersion, err := parseBlinkitConfig(resp.Body)
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "page config", Err: err}
	}
	deviceID := cookies["gr_1_deviceId"]
	if deviceID == "" {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "page config", Err: errors.New("gr_1_deviceId cookie not issued")}
	}

	resp, err = h.doStep(ctx, "auth key", &session, func(sessionID string) proxy.Request {
		return proxy.Request{
			Method:    "GET",
			TargetURL: blinkitAuthKeyURL,
			Headers: map[string]string{
				"Cookies": proxy.FormatCookieHeader(cookies),
				"req_key": requestKey,
			},
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}
	cookies = proxy.MergeCookies(cookies, resp.CookieDelta)

	var auth struct {
		Success bool   `json:"success"`
		AuthKey string `json:"auth_key"`
	}
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "auth key", Err: err}
	}
	if !auth.Success || auth.AuthKey == "" {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "auth key", Err: errors.New("accounts service refused the request key")}
	}

	h.log.Debug().Str("device_id", deviceID).Msg("Credentials acquired")
	return &BlinkitCredential{
		DeviceID:   deviceID,
		AppVersion: appVersion,
		AuthKey:    auth.AuthKey,
		Cookies:    cookies,
		Lat:        loc.Lat,
		Lon:        loc.Lon,
	}, nil
}

// parseBlinkitConfig cuts the runtime config JSON out of the landing page.
// The blob ends at the first "};" after the marker.
func parseBlinkitConfig(body []byte) (requestKey, appVersion string, err error) {
	text := string(body)
	idx := strings.LastIndex(text, blinkitConfigMarker)
	if idx < 0 {
		return "", "", errors.New("runtime config marker not found")
	}
	rest := text[idx+len(blinkitConfigMarker):]
	end := strings.Index(rest, "};")
	if end < 0 {
		return "", "", errors.New("runtime config not terminated")
	}

	var config struct {
		RequestKey flexString `json:"requestKey"`
		AppVersion flexString `json:"appVersion"`
	}
	if err := json.Unmarshal([]byte(rest[:end+1]), &config); err != nil {
		return "", "", err
	}
	if config.RequestKey == "" {
		return "", "", errors.New("runtime config carries no request key")
	}
	return config.RequestKey.String(), config.AppVersion.String(), nil
}

func (h *Blinkit) Search(ctx context.Context, query string, loc geo.Location, cred Credential) ([]types.Listing, Credential, error) {
	return h.searchWithRetry(ctx, loc, cred,
		func(ctx context.Context) (Credential, error) {
			return h.Acquire(ctx, loc)
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			bc, ok := c.(*BlinkitCredential)
			if !ok {
				return nil, errWrongCredential
			}
			return h.searchOnce(ctx, query, loc, bc)
		})
}

func (h *Blinkit) searchOnce(ctx context.Context, query string, loc geo.Location, cred *BlinkitCredential) ([]types.Listing, error) {
	params := url.Values{}
	params.Set("start", "0")
	params.Set("size", "30")
	params.Set("search_type", "6")
	params.Set("q", query)

	// Location rides along in cookies, not query parameters.
	cookie := proxy.FormatCookieHeader(cred.Cookies) +
		"; gr_1_lat=" + coordString(loc.Lat) +
		"; gr_1_lon=" + coordString(loc.Lon) +
		"; gr_1_locality=" + loc.Locality +
		"; gr_1_landmark=" + url.PathEscape(loc.FormattedAddress)

	headers := map[string]string{
		"accept":            "*/*",
		"accept-language":   "en-US,en;q=0.9",
		"app_client":        "consumer_web",
		"app_version":       cred.AppVersion,
		"auth_key":          cred.AuthKey,
		"content-type":      "application/json",
		"device_id":         cred.DeviceID,
		"lat":               coordString(loc.Lat),
		"lon":               coordString(loc.Lon),
		"referer":           blinkitBase + "/s/?q=" + url.QueryEscape(query),
		"rn_bundle_version": blinkitRNBundleVersion,
		"session_uuid":      uuid.NewString(),
		"user-agent":        userAgent,
		"web_app_version":   blinkitWebAppVersion,
		"cookie":            cookie,
	}

	resp, err := h.proxy.Do(ctx, proxy.Request{
		Method:    "GET",
		TargetURL: blinkitSearchURL + "?" + params.Encode(),
		Headers:   headers,
	})
	if err != nil {
		return nil, err
	}
	return h.parseSearch(resp.Body)
}

type blinkitObject struct {
	Tracking struct {
		WidgetMeta struct {
			Title      string     `json:"title"`
			ID         flexString `json:"id"`
			CustomData struct {
				Price flexString `json:"price"`
			} `json:"custom_data"`
		} `json:"widget_meta"`
	} `json:"tracking"`
	Data struct {
		Product struct {
			Inventory    float64 `json:"inventory"`
			Unit         string  `json:"unit"`
			RfcActionsV2 struct {
				Default []struct {
					RemoveFromCart struct {
						CartItem struct {
							ImageURL string `json:"image_url"`
						} `json:"cart_item"`
					} `json:"remove_from_cart"`
				} `json:"default"`
			} `json:"rfc_actions_v2"`
		} `json:"product"`
	} `json:"data"`
}

// parseSearch walks the widget stream. The first object is the header
// widget, so products start at index 1. Items missing any display field are
// dropped rather than rendered half-empty.
func (h *Blinkit) parseSearch(body []byte) ([]types.Listing, error) {
	var page struct {
		Objects []blinkitObject `json:"objects"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ParseError{Platform: h.platform, Msg: err.Error()}
	}
	if len(page.Objects) <= 1 {
		return []types.Listing{}, nil
	}

	var listings []types.Listing
	for _, obj := range page.Objects[1:] {
		product := obj.Data.Product
		if product.Inventory <= 0 {
			continue
		}

		name := obj.Tracking.WidgetMeta.Title
		id := obj.Tracking.WidgetMeta.ID.String()
		price := types.ParsePrice(obj.Tracking.WidgetMeta.CustomData.Price.String())

		image := ""
		if actions := product.RfcActionsV2.Default; len(actions) > 0 {
			image = actions[0].RemoveFromCart.CartItem.ImageURL
		}

		if name == "" || id == "" || price == nil || image == "" || product.Unit == "" {
			continue
		}

		listings = append(listings, types.Listing{
			Platform:    h.platform,
			Name:        name,
			Price:       price,
			ImageURL:    image,
			ProductURL:  blinkitBase + "/prn/" + productSlug(name) + "/prid/" + id,
			RawQuantity: product.Unit,
		})
	}
	return listings, nil
}
