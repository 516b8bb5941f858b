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
	zeptoSite       = "https://www.zeptonow.com"
	zeptoSearchURL  = "https://api.zeptonow.com/api/v3/search"
	zeptoCDNBase    = "https://cdn.zeptonow.com/production/ik-seo/"
	zeptoAppVersion = "12.59.0"

	// zeptoComponents is the static capability list the web client declares.
	zeptoComponents = "CONVENIENCE_FEE,RAIN_FEE,EXTERNAL_COUPONS,STANDSTILL,BUNDLE,PART_OF_BUNDLE,UNLIMITED_UPSELL,UPSELL_MULTI_VALUE,PROMO_CASH,24X7_STORE,SUPER_SAVER,NO_PLATFORM_FEE,DYNAMIC_FEE"
)

// Zepto drives zeptonow.com. Presenting a position cookie to the search page
// makes the edge assign a store and drop the session cookies searches need;
// the serviceability verdict rides back in a cookie as well.
type Zepto struct {
	baseHandler
}

func NewZepto(client *proxy.Client, logger *zerolog.Logger) *Zepto {
	return &Zepto{baseHandler: newBaseHandler(types.PlatformZepto, client, logger)}
}

func (h *Zepto) Acquire(ctx context.Context, loc geo.Location) (Credential, error) {
	position, err := json.Marshal(struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}{loc.Lat, loc.Lon})
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "store assignment", Err: err}
	}
	cookie := "user_position=" + url.PathEscape(string(position)) +
		"; latitude=" + coordString(loc.Lat) +
		"; longitude=" + coordString(loc.Lon)

	session := newSessionID()
	resp, err := h.doStep(ctx, "store assignment", &session, func(sessionID string) proxy.Request {
		return proxy.Request{
			Method:    "GET",
			TargetURL: zeptoSite + "/search",
			Headers: map[string]string{
				"accept":          "*/*",
				"accept-language": "en-US,en;q=0.9",
				"rsc":             "1",
				"user-agent":      userAgent,
				"cookie":          cookie,
			},
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}

	raw := resp.CookieDelta["serviceability"]
	if raw == "" {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "store assignment", Err: errors.New("serviceability cookie not issued")}
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "store assignment", Err: err}
	}
	var sv struct {
		PrimaryStore struct {
			Serviceable bool       `json:"serviceable"`
			StoreID     flexString `json:"storeId"`
		} `json:"primaryStore"`
	}
	if err := json.Unmarshal([]byte(decoded), &sv); err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "store assignment", Err: err}
	}
	if !sv.PrimaryStore.Serviceable {
		marker := &ZeptoCredential{Lat: loc.Lat, Lon: loc.Lon, Serviceable: types.BoolPtr(false)}
		return marker, &NonServiceableError{Platform: h.platform}
	}

	cred := &ZeptoCredential{
		StoreID:   sv.PrimaryStore.StoreID.String(),
		DeviceID:  resp.CookieDelta["device_id"],
		SessionID: resp.CookieDelta["session_id"],
		XSRFToken: resp.CookieDelta["XSRF-TOKEN"],
		Lat:       loc.Lat,
		Lon:       loc.Lon,
	}
	if cred.StoreID == "" || cred.DeviceID == "" || cred.SessionID == "" || cred.XSRFToken == "" {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "store assignment", Err: errors.New("session cookies incomplete")}
	}

	h.log.Debug().Str("store_id", cred.StoreID).Msg("Credentials acquired")
	return cred, nil
}

func (h *Zepto) Search(ctx context.Context, query string, loc geo.Location, cred Credential) ([]types.Listing, Credential, error) {
	return h.searchWithRetry(ctx, loc, cred,
		func(ctx context.Context) (Credential, error) {
			return h.Acquire(ctx, loc)
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			zc, ok := c.(*ZeptoCredential)
			if !ok {
				return nil, errWrongCredential
			}
			return h.searchOnce(ctx, query, zc)
		})
}

func (h *Zepto) searchOnce(ctx context.Context, query string, cred *ZeptoCredential) ([]types.Listing, error) {
	body, err := json.Marshal(struct {
		Query         string `json:"query"`
		PageNumber    int    `json:"pageNumber"`
		IntentID      string `json:"intentId"`
		Mode          string `json:"mode"`
		UserSessionID string `json:"userSessionId"`
	}{query, 1, uuid.NewString(), "AUTOSUGGEST", cred.SessionID})
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"accept":                "application/json, text/plain, */*",
		"appversion":            zeptoAppVersion,
		"compatible_components": zeptoComponents,
		"content-type":          "application/json",
		"deviceid":              cred.DeviceID,
		"platform":              "WEB",
		"referer":               zeptoSite + "/",
		"sessionid":             cred.SessionID,
		"store_etas":            `{"` + cred.StoreID + `":10}`,
		"storeid":               cred.StoreID,
		"tenant":                "ZEPTO",
		"user-agent":            userAgent,
		"x-without-bearer":      "true",
		"x-xsrf-token":          cred.XSRFToken,
	}

	resp, err := h.proxy.Do(ctx, proxy.Request{
		Method:    "POST",
		TargetURL: zeptoSearchURL,
		Headers:   headers,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	return h.parseSearch(resp.Body)
}

type zeptoProduct struct {
	OutOfStock             bool    `json:"outOfStock"`
	SuperSaverSellingPrice float64 `json:"superSaverSellingPrice"`
	Product                struct {
		Name string `json:"name"`
	} `json:"product"`
	ProductVariant struct {
		ID                string `json:"id"`
		FormattedPacksize string `json:"formattedPacksize"`
		Images            []struct {
			Path string `json:"path"`
		} `json:"images"`
	} `json:"productVariant"`
}

// parseSearch reads every product widget in the layout. Widget names carry a
// SEARCHED_PRODUCTS prefix followed by a ranking discriminator.
func (h *Zepto) parseSearch(body []byte) ([]types.Listing, error) {
	var page struct {
		Layout []struct {
			WidgetName string `json:"widgetName"`
			Data       struct {
				Resolver struct {
					Data struct {
						Items []struct {
							ProductResponse zeptoProduct `json:"productResponse"`
						} `json:"items"`
					} `json:"data"`
				} `json:"resolver"`
			} `json:"data"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ParseError{Platform: h.platform, Msg: err.Error()}
	}

	var listings []types.Listing
	for _, widget := range page.Layout {
		if !strings.HasPrefix(widget.WidgetName, "SEARCHED_PRODUCTS") {
			continue
		}
		for _, item := range widget.Data.Resolver.Data.Items {
			pr := item.ProductResponse
			if pr.OutOfStock || pr.Product.Name == "" {
				continue
			}

			var price *int
			if paise := int(pr.SuperSaverSellingPrice); paise > 0 {
				price = types.IntPtr(paise / 100)
			}

			image := ""
			if imgs := pr.ProductVariant.Images; len(imgs) > 0 {
				image = zeptoImageURL(imgs[0].Path, pr.Product.Name)
			}

			listings = append(listings, types.Listing{
				Platform:    h.platform,
				Name:        pr.Product.Name,
				Price:       price,
				ImageURL:    image,
				ProductURL:  zeptoSite + "/pn/" + productSlug(pr.Product.Name) + "/pvid/" + pr.ProductVariant.ID,
				RawQuantity: pr.ProductVariant.FormattedPacksize,
			})
		}
	}
	return listings, nil
}

// zeptoImageURL rebuilds the CDN's SEO image path: the stored path keeps its
// directory part and extension, with a hyphenated product name in between.
func zeptoImageURL(path, name string) string {
	base := path
	ext := ""
	if i := strings.Index(path, "."); i >= 0 {
		base = path[:i]
		ext = path[strings.LastIndex(path, ".")+1:]
	}
	if ext == "" {
		return zeptoCDNBase + base + "/" + imageSlug(name)
	}
	return zeptoCDNBase + base + "/" + imageSlug(name) + "." + ext
}
