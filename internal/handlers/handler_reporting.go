package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	ledgerService    portssvc.LedgerFacade
	currencyService  portssvc.CurrencyReaderSvc
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService, ls portssvc.LedgerFacade, cs portssvc.CurrencyReaderSvc) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		ledgerService:    ls,
		currencyService:  cs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingService, ls portssvc.LedgerFacade, cs portssvc.CurrencyReaderSvc) {
	h := newReportingHandler(rs, ls, cs)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance report as of a specific date. When debits and credits disagree the report is still returned with a warning.
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid asOf date format", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	asOf := dateOrToday(params.AsOf)
	logger = logger.With(slog.String("as_of", asOf.Format(domain.DateLayout)))

	tb, err := h.ledgerService.GetTrialBalance(c.Request.Context(), &asOf)
	warning, err := invariantWarning(err)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}

	res := dto.ToTrialBalanceResponse(tb, h.currencyService.BaseCurrency())
	if warning != "" {
		logger.Error("Trial balance out of balance", slog.String("warning", warning))
		res.Warning = warning
	}
	c.JSON(http.StatusOK, res)
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Description Revenue, cost of goods, operating and other sections with margins for an inclusive period
// @Tags reports
// @Produce json
// @Param fromDate query string true "Period start (YYYY-MM-DD)"
// @Param toDate query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.IncomeStatementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid reporting period", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromDate and toDate are required in YYYY-MM-DD format"})
		return
	}
	start, _ := domain.ParseDate(params.FromDate)
	end, _ := domain.ParseDate(params.ToDate)
	logger = logger.With(slog.String("from_date", params.FromDate), slog.String("to_date", params.ToDate))

	is, err := h.ledgerService.GetIncomeStatement(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}

	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(is, h.currencyService.BaseCurrency()))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet
// @Description Assets, liabilities and equity with current earnings as of a date
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.BalanceSheetParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid asOf date format", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	asOf := dateOrToday(params.AsOf)
	logger = logger.With(slog.String("as_of", asOf.Format(domain.DateLayout)))

	bs, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	warning, err := invariantWarning(err)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}

	res := dto.ToBalanceSheetResponse(bs, h.currencyService.BaseCurrency())
	if warning != "" {
		logger.Error("Balance sheet out of balance", slog.String("warning", warning))
		res.Warning = warning
	}
	c.JSON(http.StatusOK, res)
}
