package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ndjsonContentType is written on streamed ledger exports.
const ndjsonContentType = "application/x-ndjson"

// ledgerStart is the lower bound used when a stream has no fromDate.
var ledgerStart = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

type ledgerHandler struct {
	journalService portssvc.JournalReaderSvc
}

// registerLedgerRoutes registers the raw ledger export
func registerLedgerRoutes(rg *gin.RouterGroup, js portssvc.JournalReaderSvc) {
	h := &ledgerHandler{journalService: js}
	rg.GET("/ledger/entries", h.streamEntries)
}

// streamEntries godoc
// @Summary Stream ledger entries
// @Description Writes one JSON entry per line in (date, entry number) order. A failure after the first line is reported as a final {"error": ...} line.
// @Tags ledger
// @Produce  application/x-ndjson
// @Param   fromDate query string false "First date (YYYY-MM-DD)"
// @Param   toDate query string false "Last date (YYYY-MM-DD)" default(current date)
// @Param   accountId query string false "Only entries touching this account"
// @Success 200 {object} dto.JournalEntryResponse
// @Router /ledger/entries [get]
func (h *ledgerHandler) streamEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.StreamEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for StreamEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	start := ledgerStart
	if params.FromDate != "" {
		start, _ = domain.ParseDate(params.FromDate)
	}
	end := dateOrToday(params.ToDate)
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toDate is before fromDate", "field": "toDate"})
		return
	}

	logger = logger.With(slog.String("from_date", start.Format(domain.DateLayout)), slog.String("to_date", end.Format(domain.DateLayout)))

	written := 0
	enc := json.NewEncoder(c.Writer)
	for entry, err := range h.journalService.StreamEntries(c.Request.Context(), start, end, params.AccountID) {
		if err != nil {
			if written == 0 {
				respondError(c, logger, err, "Failed to stream ledger entries")
				return
			}
			logger.Error("Ledger stream interrupted", slog.Int("written", written), slog.String("error", err.Error()))
			_ = enc.Encode(gin.H{"error": "ledger stream interrupted"})
			return
		}
		if written == 0 {
			c.Header("Content-Type", ndjsonContentType)
			c.Status(http.StatusOK)
		}
		if err := enc.Encode(dto.ToJournalEntryResponse(&entry)); err != nil {
			logger.Warn("Client went away during ledger stream", slog.Int("written", written), slog.String("error", err.Error()))
			return
		}
		written++
		c.Writer.Flush()
	}

	if written == 0 {
		c.Header("Content-Type", ndjsonContentType)
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
	}
	logger.Info("Ledger stream complete", slog.Int("written", written))
}
