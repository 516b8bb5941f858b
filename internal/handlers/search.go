package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/matching"
	"github.com/pricekart/compare-service/internal/orchestrator"
	"github.com/pricekart/compare-service/internal/platforms"
)

// Comparer runs one cross-storefront price comparison.
type Comparer interface {
	Compare(ctx context.Context, query string, lat, lon float64, creds *platforms.Bundle) (*orchestrator.SearchResult, error)
}

// SearchHandler serves the public comparison endpoint.
type SearchHandler struct {
	comparer Comparer
	log      zerolog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(comparer Comparer, logger *zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		comparer: comparer,
		log:      logger.With().Str("component", "search_handler").Logger(),
	}
}

// SearchRequest is the body of POST /get-search-results. Coordinates are
// pointers so that 0 is distinguishable from absent.
type SearchRequest struct {
	ItemName    string            `json:"item_name" binding:"required" jsonschema:"required"`
	Lat         *float64          `json:"lat" binding:"required" jsonschema:"required,minimum=-90,maximum=90"`
	Lon         *float64          `json:"lon" binding:"required" jsonschema:"required,minimum=-180,maximum=180"`
	Credentials *platforms.Bundle `json:"credentials"`
}

// SearchResponse is the success envelope of POST /get-search-results.
type SearchResponse struct {
	Status string                    `json:"status" jsonschema:"required"`
	Data   *orchestrator.SearchResult `json:"data" jsonschema:"required"`
}

// GetSearchResults compares product prices across all storefronts
// @Summary Compare product prices across storefronts
// @Description Searches all supported quick-commerce storefronts for the item, groups listings that represent the same product and returns ranked groups plus refreshed per-storefront credentials
// @Tags search
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Product query, coordinates and optional credentials from a previous response"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /get-search-results [post]
func (h *SearchHandler) GetSearchResults(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if *req.Lat < -90 || *req.Lat > 90 {
		respondError(c, http.StatusBadRequest, "lat must be between -90 and 90")
		return
	}
	if *req.Lon < -180 || *req.Lon > 180 {
		respondError(c, http.StatusBadRequest, "lon must be between -180 and 180")
		return
	}

	result, err := h.comparer.Compare(c.Request.Context(), req.ItemName, *req.Lat, *req.Lon, req.Credentials)
	if err != nil {
		var locErr *orchestrator.LocationError
		if errors.As(err, &locErr) {
			h.log.Error().Err(err).
				Float64("lat", *req.Lat).
				Float64("lon", *req.Lon).
				Msg("location resolution failed")
			respondError(c, http.StatusInternalServerError, "could not resolve location")
			return
		}
		h.log.Error().Err(err).Str("query", req.ItemName).Msg("search failed")
		respondError(c, http.StatusInternalServerError, "search failed")
		return
	}

	if result.Groups == nil {
		result.Groups = []matching.Group{}
	}

	c.JSON(http.StatusOK, SearchResponse{
		Status: statusSuccess,
		Data:   result,
	})
}
