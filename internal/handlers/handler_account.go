package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/SscSPs/spice_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	accountService  portssvc.AccountSvcFacade
	ledgerService   portssvc.LedgerFacade
	currencyService portssvc.CurrencyReaderSvc
}

func newAccountHandler(as portssvc.AccountSvcFacade, ls portssvc.LedgerFacade, cs portssvc.CurrencyReaderSvc) *accountHandler {
	return &accountHandler{
		accountService:  as,
		ledgerService:   ls,
		currencyService: cs,
	}
}

// registerAccountRoutes registers routes related to accounts
func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, ls portssvc.LedgerFacade, cs portssvc.CurrencyReaderSvc) {
	h := newAccountHandler(as, ls, cs)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/postable", h.listPostableAccounts)
		accounts.GET("/code/:code", h.getAccountByCode)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
		accounts.POST("/:id/deactivate", h.deactivateAccount)
		accounts.GET("/:id/balance", h.getAccountBalance)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Parent account not found"
// @Failure 409 {object} map[string]string "Account code already in use"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("account_code", req.Code), slog.String("currency_code", req.CurrencyCode))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts with headline figures
// @Description Returns the chart of accounts ordered by code together with revenue, expense and asset totals
// @Tags accounts
// @Produce  json
// @Param   includeInactive query bool false "Include deactivated accounts"
// @Success 200 {object} dto.AccountsOverviewResponse
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	overview, err := h.ledgerService.GetAccounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	if !params.IncludeInactive {
		active := overview.Accounts[:0:0]
		for _, a := range overview.Accounts {
			if a.IsActive {
				active = append(active, a)
			}
		}
		overview.Accounts = active
	}

	logger.Debug("Listed accounts", slog.Int("count", len(overview.Accounts)))
	c.JSON(http.StatusOK, dto.ToAccountsOverviewResponse(overview))
}

// listPostableAccounts godoc
// @Summary List accounts that accept postings
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Router /accounts/postable [get]
func (h *accountHandler) listPostableAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.accountService.ListPostableAccounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list postable accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByCode godoc
// @Summary Get an account by its chart code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/code/{code} [get]
func (h *accountHandler) getAccountByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_code", c.Param("code")))

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account
// @Description Changes the name, description or posting flag of an account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Stops an account from accepting postings. History is kept.
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Account already inactive"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account has open drafts"
// @Router /accounts/{id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))

	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated successfully")
	c.Status(http.StatusNoContent)
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Removes an account that was never posted to
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account has postings or children"
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))

	userID, ok := callerID(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete account")
		return
	}

	logger.Info("Account deleted successfully")
	c.Status(http.StatusNoContent)
}

// getAccountBalance godoc
// @Summary Get the balance of an account
// @Description Balance in base currency, signed in the account's normal direction
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   asOf query string false "Balance date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{id}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))
	var params dto.AccountBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid asOf date", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	asOf := dateOrToday(params.AsOf)

	balance, err := h.accountService.CalculateAccountBalance(c.Request.Context(), c.Param("id"), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate account balance")
		return
	}

	base := h.currencyService.BaseCurrency()
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountID:    c.Param("id"),
		AsOf:         asOf.Format(domain.DateLayout),
		Balance:      balance,
		CurrencyCode: base,
		Display:      utils.DisplayAmount(balance, base),
	})
}

// dateOrToday parses a date that already passed the ledgerdate binding.
func dateOrToday(s string) time.Time {
	if s == "" {
		return domain.DateOf(time.Now())
	}
	d, _ := domain.ParseDate(s)
	return d
}
