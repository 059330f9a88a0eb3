package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler holds dependencies for currency handlers.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{currencyService: cs}
}

// registerCurrencyRoutes registers routes related to currencies
func registerCurrencyRoutes(rg *gin.RouterGroup, cs portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(cs)

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:currencyCode", h.getCurrency)
	}
}

// listCurrencies godoc
// @Summary List supported currencies
// @Description The base currency is flagged with isBase
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list currencies")
		return
	}

	base := h.currencyService.BaseCurrency()
	res := make([]dto.CurrencyResponse, len(currencies))
	for i, cur := range currencies {
		res[i] = dto.ToCurrencyResponse(cur, base)
	}
	c.JSON(http.StatusOK, res)
}

// getCurrency godoc
// @Summary Get a currency by code
// @Tags currencies
// @Produce  json
// @Param   currencyCode path string true "ISO 4217 code"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} map[string]string "Currency not supported"
// @Router /currencies/{currencyCode} [get]
func (h *currencyHandler) getCurrency(c *gin.Context) {
	code := strings.ToUpper(c.Param("currencyCode"))
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("currency_code", code))

	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve currency")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponse(*currency, h.currencyService.BaseCurrency()))
}
