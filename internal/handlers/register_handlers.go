package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/SscSPs/spice_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ledgerdate", validateLedgerDate)
		_ = v.RegisterValidation("currency", validateCurrencyCode)
	}
}

// validateCurrencyCode accepts any ISO 4217 code known to go-money, in either case.
// Services upper-case codes before use.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	_, ok := utils.LookupCurrency(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	return ok
}

// validateLedgerDate accepts calendar dates in YYYY-MM-DD form.
func validateLedgerDate(fl validator.FieldLevel) bool {
	_, err := domain.ParseDate(fl.Field().String())
	return err == nil
}

// HealthProbe reports whether a backing store is reachable.
type HealthProbe func(ctx context.Context) error

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// probe may be nil. v1Middleware runs after caller identification on every /api/v1 route.
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	probe HealthProbe,
	v1Middleware ...gin.HandlerFunc,
) {
	r.GET("/health", func(c *gin.Context) {
		if probe != nil {
			if err := probe(c.Request.Context()); err != nil {
				middleware.GetLoggerFromCtx(c.Request.Context()).Error("Health check failed", slog.String("error", err.Error()))
				c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, services, v1Middleware)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	service *portssvc.ServiceContainer,
	extra []gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1", middleware.CallerIdentity())
	v1.Use(extra...)

	registerAccountRoutes(v1, service.Account, service.Ledger, service.Currency)
	registerCurrencyRoutes(v1, service.Currency)
	registerExchangeRateRoutes(v1, service.ExchangeRate)
	registerJournalRoutes(v1, service.Journal)
	registerLedgerRoutes(v1, service.Journal)
	registerReportingRoutes(v1, service.Reporting, service.Ledger, service.Currency)
	if service.Activity != nil {
		registerActivityRoutes(v1, service.Activity)
	}
}
