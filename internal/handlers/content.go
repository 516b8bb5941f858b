package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/contentstore"
	"github.com/pricekart/compare-service/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// contentTables lists the tables exposed through the admin content API,
// in route registration order. Route segments equal table names.
var contentTables = []string{
	contentstore.TableOffers,
	contentstore.TableSlideshow,
	contentstore.TableDailyNeeds,
	contentstore.TableTrendingProducts,
	contentstore.TableDailyNeedsItems,
}

// ContentHandler serves the admin content API: CRUD over the managed
// tables plus customer analytics.
type ContentHandler struct {
	store contentstore.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewContentHandler creates a new content handler
func NewContentHandler(store contentstore.Store, logger *zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		store: store,
		log:   logger.With().Str("component", "content_handler").Logger(),
		now:   time.Now,
	}
}

// Register wires the content routes onto the /api group. Mutating routes
// run behind the supplied admin auth middleware; reads stay public so the
// storefront can load banners and offers without a key. Analytics expose
// user data and are admin-only despite being reads.
func (h *ContentHandler) Register(api *gin.RouterGroup, adminAuth gin.HandlerFunc) {
	for _, table := range contentTables {
		api.GET("/"+table, h.list(table))
		api.POST("/"+table, adminAuth, h.create(table))
		api.PUT("/"+table+"/:id", adminAuth, h.update(table))
		api.DELETE("/"+table+"/:id", adminAuth, h.remove(table))
	}

	api.PUT("/bg_image/:id", adminAuth, h.UpdateBackgroundImage)
	api.GET("/customer_analytics", adminAuth, h.CustomerAnalytics)
	api.GET("/customer_analytics/export", adminAuth, h.ExportCustomerAnalytics)
}

// list returns every row of the table.
func (h *ContentHandler) list(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := h.store.Select(c.Request.Context(), table, nil)
		if err != nil {
			h.log.Error().Err(err).Str("table", table).Msg("content select failed")
			respondError(c, http.StatusInternalServerError, "could not load "+table)
			return
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": rows})
	}
}

// create inserts one row from the request body.
func (h *ContentHandler) create(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var row map[string]any
		if err := c.ShouldBindJSON(&row); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if len(row) == 0 {
			respondError(c, http.StatusBadRequest, "request body required")
			return
		}

		inserted, err := h.store.Insert(c.Request.Context(), table, row)
		if err != nil {
			h.log.Error().Err(err).Str("table", table).Msg("content insert failed")
			respondError(c, http.StatusInternalServerError, "could not insert into "+table)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "data": inserted})
	}
}

// update applies the body's values to the row with the path id.
func (h *ContentHandler) update(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var values map[string]any
		if err := c.ShouldBindJSON(&values); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		delete(values, "id")
		if len(values) == 0 {
			respondError(c, http.StatusBadRequest, "request body required")
			return
		}

		count, err := h.store.Update(c.Request.Context(), table, map[string]any{"id": id}, values)
		if err != nil {
			h.log.Error().Err(err).Str("table", table).Int64("id", id).Msg("content update failed")
			respondError(c, http.StatusInternalServerError, "could not update "+table)
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, "not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "updated": count})
	}
}

// remove deletes the row with the path id.
func (h *ContentHandler) remove(table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		count, err := h.store.Delete(c.Request.Context(), table, map[string]any{"id": id})
		if err != nil {
			h.log.Error().Err(err).Str("table", table).Int64("id", id).Msg("content delete failed")
			respondError(c, http.StatusInternalServerError, "could not delete from "+table)
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, "not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "deleted": count})
	}
}

// BackgroundImageRequest is the body of PUT /api/bg_image/:id.
type BackgroundImageRequest struct {
	BgImage string `json:"bg_image" binding:"required" jsonschema:"required"`
}

// UpdateBackgroundImage swaps the background image of a slideshow row
// @Summary Update a slideshow background image
// @Tags content
// @Accept json
// @Produce json
// @Param id path int true "Slideshow row id"
// @Param request body BackgroundImageRequest true "New background image URL"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Missing or invalid admin key"
// @Failure 404 {object} map[string]string "Row not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/bg_image/{id} [put]
func (h *ContentHandler) UpdateBackgroundImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req BackgroundImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.store.Update(c.Request.Context(), contentstore.TableSlideshow,
		map[string]any{"id": id}, map[string]any{"bg_image": req.BgImage})
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("background image update failed")
		respondError(c, http.StatusInternalServerError, "could not update background image")
		return
	}
	if count == 0 {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "background image updated"})
}

// CustomerAnalytics reports user totals and the most recent signups
// @Summary Customer analytics
// @Description Returns user totals split by premium status plus the most recent signups
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Missing or invalid admin key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/customer_analytics [get]
func (h *ContentHandler) CustomerAnalytics(c *gin.Context) {
	users, err := h.store.Select(c.Request.Context(), contentstore.TableUsers, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("analytics select failed")
		respondError(c, http.StatusInternalServerError, "could not load analytics")
		return
	}

	premium := 0
	for _, u := range users {
		if b, ok := u["is_premium"].(bool); ok && b {
			premium++
		}
	}

	// Rows come back ordered by id, so the tail holds the newest signups.
	recent := make([]map[string]any, 0, 10)
	for i := len(users) - 1; i >= 0 && len(recent) < 10; i-- {
		recent = append(recent, sanitizeUser(users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data": gin.H{
			"total_users":    len(users),
			"premium_users":  premium,
			"free_users":     len(users) - premium,
			"recent_signups": recent,
		},
	})
}

// ExportCustomerAnalytics streams the analytics workbook
// @Summary Download customer analytics as XLSX
// @Tags content
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} map[string]string "Missing or invalid admin key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/customer_analytics/export [get]
func (h *ContentHandler) ExportCustomerAnalytics(c *gin.Context) {
	users, err := h.store.Select(c.Request.Context(), contentstore.TableUsers, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("analytics export select failed")
		respondError(c, http.StatusInternalServerError, "could not load analytics")
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := export.WriteAnalyticsWorkbook(&buf, users, now); err != nil {
		h.log.Error().Err(err).Msg("analytics workbook failed")
		respondError(c, http.StatusInternalServerError, "could not build workbook")
		return
	}

	filename := "customer-analytics-" + now.Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// pathID parses the :id path parameter, replying 400 on garbage.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// sanitizeUser strips secrets from a users row before it leaves the API.
func sanitizeUser(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if k == "password_hash" {
			continue
		}
		out[k] = v
	}
	return out
}
