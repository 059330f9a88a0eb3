package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for journal entries and drafts.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers routes related to journal entries
func registerJournalRoutes(rg *gin.RouterGroup, js portssvc.JournalSvcFacade) {
	h := newJournalHandler(js)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.POST("/validate", h.validateEntry)
		entries.GET("/number/:entryNumber", h.getEntryByNumber)
		entries.GET("/:entryId", h.getEntry)
		entries.POST("/:entryId/approve", h.approveEntry)
		entries.POST("/:entryId/reverse", h.reverseEntry)

		drafts := entries.Group("/drafts")
		drafts.POST("", h.saveDraft)
		drafts.POST("/:draftId/post", h.postDraft)
		drafts.POST("/:draftId/cancel", h.cancelDraft)
	}
}

// bindDraft decodes and converts a CreateJournalEntryRequest, writing 400 on failure.
func bindDraft(c *gin.Context, logger *slog.Logger) (domain.JournalEntry, bool) {
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for journal entry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return domain.JournalEntry{}, false
	}
	draft, err := req.ToDraft()
	if err != nil {
		logger.Warn("Invalid journal entry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.JournalEntry{}, false
	}
	return draft, true
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates, converts and appends a balanced entry to the ledger
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Entry number already used"
// @Failure 422 {object} map[string]string "Unbalanced entry, inactive account or missing rate"
// @Router /journal-entries [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	draft, ok := bindDraft(c, logger)
	if !ok {
		return
	}
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to post journal entry", slog.Int("line_count", len(draft.Lines)))
	entry, err := h.journalService.PostEntry(c.Request.Context(), draft, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to post journal entry")
		return
	}

	logger.Info("Journal entry posted", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// validateEntry godoc
// @Summary Dry-run the posting rules
// @Description Converts and balances the entry without storing it. An unbalanced entry returns valid=false with its totals.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 200 {object} dto.ValidateJournalEntryResponse
// @Router /journal-entries/validate [post]
func (h *journalHandler) validateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	draft, ok := bindDraft(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.ValidateEntry(c.Request.Context(), draft)
	var unbalanced *apperrors.UnbalancedEntryError
	if errors.As(err, &unbalanced) {
		c.JSON(http.StatusOK, dto.ValidateJournalEntryResponse{
			Valid:       false,
			TotalDebit:  unbalanced.TotalDebit,
			TotalCredit: unbalanced.TotalCredit,
			Entry:       dto.ToJournalEntryResponse(&draft),
		})
		return
	}
	if err != nil {
		respondError(c, logger, err, "Failed to validate journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ValidateJournalEntryResponse{
		Valid:       true,
		TotalDebit:  entry.TotalDebit,
		TotalCredit: entry.TotalCredit,
		Entry:       dto.ToJournalEntryResponse(entry),
	})
}

// saveDraft godoc
// @Summary Save a journal entry draft
// @Description Stores the entry without posting. Balance is checked when the draft is posted.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Router /journal-entries/drafts [post]
func (h *journalHandler) saveDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	draft, ok := bindDraft(c, logger)
	if !ok {
		return
	}
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	saved, err := h.journalService.SaveDraft(c.Request.Context(), draft, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to save draft")
		return
	}

	logger.Info("Draft saved", slog.String("draft_id", saved.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(saved))
}

// postDraft godoc
// @Summary Post a saved draft
// @Tags journal-entries
// @Produce  json
// @Param   draftId path string true "Draft ID"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Draft not found"
// @Failure 409 {object} map[string]string "Draft already posted or cancelled"
// @Failure 422 {object} map[string]string "Unbalanced entry"
// @Router /journal-entries/drafts/{draftId}/post [post]
func (h *journalHandler) postDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("draft_id", c.Param("draftId")))
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.PostDraft(c.Request.Context(), c.Param("draftId"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to post draft")
		return
	}

	logger.Info("Draft posted", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// cancelDraft godoc
// @Summary Cancel a saved draft
// @Tags journal-entries
// @Produce  json
// @Param   draftId path string true "Draft ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Draft not found"
// @Failure 409 {object} map[string]string "Draft already posted or cancelled"
// @Router /journal-entries/drafts/{draftId}/cancel [post]
func (h *journalHandler) cancelDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("draft_id", c.Param("draftId")))
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	draft, err := h.journalService.CancelDraft(c.Request.Context(), c.Param("draftId"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel draft")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(draft))
}

// approveEntry godoc
// @Summary Approve a posted entry
// @Tags journal-entries
// @Produce  json
// @Param   entryId path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already approved"
// @Router /journal-entries/{entryId}/approve [post]
func (h *journalHandler) approveEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryId")))
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.ApproveEntry(c.Request.Context(), c.Param("entryId"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to approve journal entry")
		return
	}

	logger.Info("Journal entry approved")
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Posts a compensating entry with debits and credits swapped
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryId path string true "Entry ID"
// @Param   reversal body dto.ReverseJournalEntryRequest false "Reversal date and description"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reversed"
// @Router /journal-entries/{entryId}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryId")))
	var req dto.ReverseJournalEntryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	reversal, err := h.journalService.ReverseEntry(c.Request.Context(), c.Param("entryId"), dateOrToday(req.Date), req.Description, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal entry")
		return
	}

	logger.Info("Journal entry reversed", slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// getEntry godoc
// @Summary Get a journal entry by ID
// @Tags journal-entries
// @Produce  json
// @Param   entryId path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /journal-entries/{entryId} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryId")))

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), c.Param("entryId"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// getEntryByNumber godoc
// @Summary Get a journal entry by its entry number
// @Tags journal-entries
// @Produce  json
// @Param   entryNumber path string true "Entry number, e.g. JE-000001"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /journal-entries/number/{entryNumber} [get]
func (h *journalHandler) getEntryByNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_number", c.Param("entryNumber")))

	entry, err := h.journalService.GetEntryByNumber(c.Request.Context(), c.Param("entryNumber"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary Page through posted entries
// @Description Entries in (date, entry number) order. Pass nextToken from the previous page to continue.
// @Tags journal-entries
// @Produce  json
// @Param   fromDate query string false "First date (YYYY-MM-DD)"
// @Param   toDate query string false "Last date (YYYY-MM-DD)"
// @Param   accountId query string false "Only entries touching this account"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Router /journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	res, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list journal entries")
		return
	}

	c.JSON(http.StatusOK, res)
}
