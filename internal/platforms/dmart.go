package platforms

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/geo"
	"github.com/pricekart/compare-service/internal/proxy"
	"github.com/pricekart/compare-service/internal/types"
)

const (
	dmartSite        = "https://www.dmart.in"
	dmartAPIBase     = "https://digital.dmart.in"
	dmartPincodeURL  = dmartAPIBase + "/api/v2/pincodes/details"
	dmartSearchURL   = dmartAPIBase + "/api/v3/search/"
	dmartImageBase   = "https://cdn.dmart.in/images/products/"
	dmartWebStoreID  = "10680"
	dmartSearchLimit = "100"
)

// DMart drives dmart.in. There is no session handshake; the only gate is a
// serviceability check on the location's place id, and searches hit the web
// catalog store directly.
type DMart struct {
	baseHandler
}

func NewDMart(client *proxy.Client, logger *zerolog.Logger) *DMart {
	return &DMart{baseHandler: newBaseHandler(types.PlatformDMart, client, logger)}
}

func dmartBaseHeaders() map[string]string {
	return map[string]string{
		"accept":       "application/json, text/plain, */*",
		"content-type": "application/json",
		"origin":       dmartSite,
		"referer":      dmartSite + "/",
		"user-agent":   userAgent,
	}
}

func (h *DMart) Acquire(ctx context.Context, loc geo.Location) (Credential, error) {
	body, err := json.Marshal(map[string]string{
		"uniqueId":   loc.PlaceID,
		"apiMode":    "GA",
		"pincode":    "",
		"currentLat": "",
		"currentLng": "",
	})
	if err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "pincode details", Err: err}
	}

	session := newSessionID()
	resp, err := h.doStep(ctx, "pincode details", &session, func(sessionID string) proxy.Request {
		return proxy.Request{
			Method:    "POST",
			TargetURL: dmartPincodeURL,
			Headers:   dmartBaseHeaders(),
			Body:      body,
			SessionID: sessionID,
		}
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		IsPincodeServiceable flexString `json:"isPincodeServiceable"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &CredentialAcquisitionError{Platform: h.platform, Step: "pincode details", Err: err}
	}
	if out.IsPincodeServiceable.String() != "true" {
		marker := &DMartCredential{PlaceID: loc.PlaceID, Serviceable: false}
		return marker, &NonServiceableError{Platform: h.platform}
	}

	return &DMartCredential{PlaceID: loc.PlaceID, Serviceable: true}, nil
}

func (h *DMart) Search(ctx context.Context, query string, loc geo.Location, cred Credential) ([]types.Listing, Credential, error) {
	return h.searchWithRetry(ctx, loc, cred,
		func(ctx context.Context) (Credential, error) {
			return h.Acquire(ctx, loc)
		},
		func(ctx context.Context, c Credential) ([]types.Listing, error) {
			if _, ok := c.(*DMartCredential); !ok {
				return nil, errWrongCredential
			}
			return h.searchOnce(ctx, query)
		})
}

func (h *DMart) searchOnce(ctx context.Context, query string) ([]types.Listing, error) {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("size", dmartSearchLimit)
	params.Set("channel", "web")
	params.Set("storeId", dmartWebStoreID)

	resp, err := h.proxy.Do(ctx, proxy.Request{
		Method:    "GET",
		TargetURL: dmartSearchURL + url.PathEscape(query) + "?" + params.Encode(),
		Headers:   dmartBaseHeaders(),
	})
	if err != nil {
		return nil, err
	}
	return h.parseSearch(resp.Body)
}

type dmartProduct struct {
	Name        string `json:"name"`
	SeoTokenNtk string `json:"seo_token_ntk"`
	SKUs        []struct {
		PriceSale       flexString `json:"priceSALE"`
		ProductImageKey string     `json:"productImageKey"`
		ImgCode         string     `json:"imgCode"`
		VariantText     string     `json:"variantTextValue"`
	} `json:"sKUs"`
}

// parseSearch reads the catalog hits. Only the first SKU of a product is
// surfaced, matching what the storefront itself shows on search.
func (h *DMart) parseSearch(body []byte) ([]types.Listing, error) {
	var page struct {
		Products []dmartProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ParseError{Platform: h.platform, Msg: err.Error()}
	}

	var listings []types.Listing
	for _, p := range page.Products {
		if p.Name == "" || len(p.SKUs) == 0 {
			continue
		}
		sku := p.SKUs[0]
		listings = append(listings, types.Listing{
			Platform:    h.platform,
			Name:        p.Name,
			Price:       types.ParsePrice(sku.PriceSale.String()),
			ImageURL:    dmartImageBase + sku.ProductImageKey + "_" + sku.ImgCode + "_B.jpg",
			ProductURL:  dmartSite + "/product/" + p.SeoTokenNtk,
			RawQuantity: sku.VariantText,
		})
	}
	return listings, nil
}
