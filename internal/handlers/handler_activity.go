package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type activityHandler struct {
	activityService portssvc.ActivitySvc
}

// registerActivityRoutes registers the admin activity feed
func registerActivityRoutes(rg *gin.RouterGroup, as portssvc.ActivitySvc) {
	h := &activityHandler{activityService: as}
	rg.GET("/activity", h.listActivity)
}

// listActivity godoc
// @Summary List recent ledger events
// @Description Newest first. Events are recorded after delivery, so the feed can trail the ledger slightly.
// @Tags activity
// @Produce json
// @Param limit query int false "Maximum number of events" default(50)
// @Success 200 {array} dto.ActivityResponse
// @Router /activity [get]
func (h *activityHandler) listActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListActivityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListActivity", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	events, err := h.activityService.ListRecentActivity(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to list activity")
		return
	}

	c.JSON(http.StatusOK, dto.ToListActivityResponse(events))
}
