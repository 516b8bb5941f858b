package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Autocompleter suggests place descriptions for a partial query.
type Autocompleter interface {
	Autocomplete(ctx context.Context, query string) ([]string, error)
}

// AutocompleteHandler serves location suggestions.
type AutocompleteHandler struct {
	geo Autocompleter
	log zerolog.Logger
}

// NewAutocompleteHandler creates a new autocomplete handler
func NewAutocompleteHandler(geo Autocompleter, logger *zerolog.Logger) *AutocompleteHandler {
	return &AutocompleteHandler{
		geo: geo,
		log: logger.With().Str("component", "autocomplete_handler").Logger(),
	}
}

// AutocompleteRequest is the body of POST /autocomplete.
type AutocompleteRequest struct {
	Query string `json:"query" binding:"required" jsonschema:"required"`
}

// AutocompleteResponse is the success envelope of POST /autocomplete.
type AutocompleteResponse struct {
	Status string   `json:"status" jsonschema:"required"`
	Data   []string `json:"data" jsonschema:"required"`
}

// Autocomplete returns place suggestions for a partial location query
// @Summary Suggest places for a partial location query
// @Tags location
// @Accept json
// @Produce json
// @Param request body AutocompleteRequest true "Partial location text"
// @Success 200 {object} AutocompleteResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /autocomplete [post]
func (h *AutocompleteHandler) Autocomplete(c *gin.Context) {
	var req AutocompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := h.geo.Autocomplete(c.Request.Context(), req.Query)
	if err != nil {
		h.log.Error().Err(err).Str("query", req.Query).Msg("autocomplete failed")
		respondError(c, http.StatusInternalServerError, "autocomplete failed")
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	c.JSON(http.StatusOK, AutocompleteResponse{
		Status: statusSuccess,
		Data:   suggestions,
	})
}
