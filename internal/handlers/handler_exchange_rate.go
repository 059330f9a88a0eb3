package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/SscSPs/spice_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler holds dependencies for exchange rate handlers.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{exchangeRateService: ers}
}

// registerExchangeRateRoutes registers routes related to exchange rates
func registerExchangeRateRoutes(rg *gin.RouterGroup, ers portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(ers)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.createExchangeRate)
		rates.GET("", h.listExchangeRates)
		rates.GET("/convert", h.convert)
	}
}

// createExchangeRate godoc
// @Summary Record an exchange rate
// @Description Stores the rate for a currency pair from a date. A second rate for the same pair and date replaces the first.
// @Tags exchange-rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateExchangeRateRequest true "Exchange rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("from_currency", req.FromCurrencyCode), slog.String("to_currency", req.ToCurrencyCode))
	rate, err := h.exchangeRateService.CreateExchangeRate(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created successfully", slog.String("exchange_rate_id", rate.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates godoc
// @Summary List exchange rates
// @Tags exchange-rates
// @Produce  json
// @Param   from query string false "Source currency"
// @Param   to query string false "Target currency"
// @Success 200 {array} dto.ExchangeRateResponse
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListExchangeRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListExchangeRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rates, err := h.exchangeRateService.ListExchangeRates(c.Request.Context(),
		strings.ToUpper(params.FromCurrencyCode), strings.ToUpper(params.ToCurrencyCode))
	if err != nil {
		respondError(c, logger, err, "Failed to list exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToListExchangeRateResponse(rates))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Uses the latest rate effective on or before asOf, falling back to the inverse pair
// @Tags exchange-rates
// @Produce  json
// @Param   amount query string true "Amount to convert"
// @Param   from query string true "Source currency"
// @Param   to query string true "Target currency"
// @Param   asOf query string false "Conversion date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "No rate for the pair"
// @Router /exchange-rates/convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ConvertParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(params.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount: " + params.Amount})
		return
	}
	from, to := strings.ToUpper(params.From), strings.ToUpper(params.To)
	asOf := dateOrToday(params.AsOf)

	ctx := c.Request.Context()
	rate, err := h.exchangeRateService.Rate(ctx, from, to, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount")
		return
	}
	converted, err := h.exchangeRateService.Convert(ctx, amount, from, to, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		AsOf:      asOf.Format(domain.DateLayout),
		Rate:      rate,
		Converted: converted,
		Display:   utils.DisplayAmount(converted, to),
	})
}
