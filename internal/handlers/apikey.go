package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/apikeys"
)

// APIKeyHandler hands out time-obfuscated map API keys to clients.
type APIKeyHandler struct {
	keys []string
	log  zerolog.Logger
	now  func() time.Time
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(keys []string, logger *zerolog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keys: keys,
		log:  logger.With().Str("component", "apikey_handler").Logger(),
		now:  time.Now,
	}
}

// APIKeyData carries the obfuscated key blob.
type APIKeyData struct {
	Key string `json:"key" jsonschema:"required"`
}

// APIKeyResponse is the success envelope of POST /get-api-key.
type APIKeyResponse struct {
	Status string     `json:"status" jsonschema:"required"`
	Data   APIKeyData `json:"data" jsonschema:"required"`
}

// GetAPIKey returns an obfuscated map API key
// @Summary Fetch a map API key
// @Description Returns one of the configured map keys, obfuscated with a layered encoding that clients reverse using the current hour
// @Tags keys
// @Produce json
// @Success 200 {object} APIKeyResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /get-api-key [post]
func (h *APIKeyHandler) GetAPIKey(c *gin.Context) {
	blob, err := apikeys.Obfuscate(h.keys, h.now())
	if err != nil {
		h.log.Error().Err(err).Msg("api key handout failed")
		respondError(c, http.StatusInternalServerError, "no api keys available")
		return
	}

	c.JSON(http.StatusOK, APIKeyResponse{
		Status: statusSuccess,
		Data:   APIKeyData{Key: blob},
	})
}
