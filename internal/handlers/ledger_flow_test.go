package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/handlers"
	"github.com/SscSPs/spice_ledger/internal/middleware"
	"github.com/SscSPs/spice_ledger/internal/platform/config"
	"github.com/SscSPs/spice_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerAPI struct {
	t      *testing.T
	router *gin.Engine
}

func (a ledgerAPI) call(method, url string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, "accountant")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func (a ledgerAPI) raw(url string) string {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set(middleware.UserIDHeader, "accountant")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return w.Body.String()
}

func (a ledgerAPI) createAccount(code, name, accountType, currency string) string {
	var res dto.AccountResponse
	status := a.call(http.MethodPost, "/api/v1/accounts", map[string]any{
		"code": code, "name": name, "type": accountType, "currency": currency,
	}, &res)
	require.Equal(a.t, http.StatusCreated, status)
	return res.AccountID
}

func TestLedgerFlowOverHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repos := memory.NewRepositoryProvider()
	dispatcher, err := services.NewEventDispatcher(services.EventDispatcherConfig{PoolSize: 2, MaxAttempts: 1}, logger)
	require.NoError(t, err)
	defer dispatcher.Shutdown(time.Second)
	dispatcher.AddEventListener(services.RecordingListener(repos.ActivityRepo))

	cfg := &config.Config{BaseCurrency: "YER", SupportedCurrencies: []string{"YER", "USD"}}
	container := services.NewServiceContainer(cfg, *repos, dispatcher)

	router := gin.New()
	router.Use(middleware.StructuredLoggingMiddleware(logger))
	handlers.RegisterRoutes(router, container, nil)
	api := ledgerAPI{t: t, router: router}

	bank := api.createAccount("1120", "Bank USD", "assets", "USD")
	cash := api.createAccount("1110", "Cash", "assets", "YER")
	sales := api.createAccount("4100", "Sales", "revenue", "YER")

	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, "/api/v1/exchange-rates", map[string]any{
		"fromCurrency": "USD", "toCurrency": "YER", "rate": "250", "dateEffective": "2024-01-01",
	}, nil))

	var converted dto.ConvertResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/v1/exchange-rates/convert?amount=2&from=YER&to=USD&asOf=2024-01-10", nil, &converted))
	assert.True(t, converted.Converted.Equal(decimal.RequireFromString("0.008")), converted.Converted.String())

	var posted dto.JournalEntryResponse
	status := api.call(http.MethodPost, "/api/v1/journal-entries", map[string]any{
		"date":        "2024-01-15",
		"description": "Export sale",
		"lines": []map[string]any{
			{"accountId": bank, "debitAmount": "100"},
			{"accountId": sales, "creditAmount": "25000"},
		},
	}, &posted)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "JE-000001", posted.EntryNumber)
	assert.True(t, posted.TotalDebit.Equal(decimal.NewFromInt(25000)))
	assert.True(t, posted.Lines[0].ExchangeRate.Equal(decimal.NewFromInt(250)))

	unbalanced := map[string]any{
		"date":        "2024-01-16",
		"description": "Typo",
		"lines": []map[string]any{
			{"accountId": cash, "debitAmount": "10"},
			{"accountId": sales, "creditAmount": "9"},
		},
	}
	assert.Equal(t, http.StatusUnprocessableEntity, api.call(http.MethodPost, "/api/v1/journal-entries", unbalanced, nil))

	var tb dto.TrialBalanceResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/v1/reports/trial-balance?asOf=2024-01-31", nil, &tb))
	assert.True(t, tb.IsBalanced)
	assert.True(t, tb.TotalDebits.Equal(decimal.NewFromInt(25000)))
	assert.Empty(t, tb.Warning)

	var is dto.IncomeStatementResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/v1/reports/income-statement?fromDate=2024-01-01&toDate=2024-01-31", nil, &is))

	stream := api.raw("/api/v1/ledger/entries?fromDate=2024-01-01&toDate=2024-12-31")
	assert.Equal(t, 1, strings.Count(stream, "\n"))
	assert.Contains(t, stream, `"entryNumber":"JE-000001"`)

	reverseURL := fmt.Sprintf("/api/v1/journal-entries/%s/reverse", posted.EntryID)
	var reversal dto.JournalEntryResponse
	require.Equal(t, http.StatusCreated, api.call(http.MethodPost, reverseURL, map[string]string{"date": "2024-01-20"}, &reversal))
	assert.Equal(t, posted.EntryID, reversal.ReversesEntryID)
	assert.Equal(t, http.StatusConflict, api.call(http.MethodPost, reverseURL, map[string]string{"date": "2024-01-21"}, nil))

	var balance dto.AccountBalanceResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/v1/accounts/"+bank+"/balance?asOf=2024-01-31", nil, &balance))
	assert.True(t, balance.Balance.IsZero(), balance.Balance.String())

	require.Equal(t, http.StatusNoContent, api.call(http.MethodPost, "/api/v1/accounts/"+sales+"/deactivate", nil, nil))
	unbalanced["lines"] = []map[string]any{
		{"accountId": cash, "debitAmount": "10"},
		{"accountId": sales, "creditAmount": "10"},
	}
	assert.Equal(t, http.StatusUnprocessableEntity, api.call(http.MethodPost, "/api/v1/journal-entries", unbalanced, nil))

	dispatcher.Flush()
	var activity []dto.ActivityResponse
	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/v1/activity", nil, &activity))
	types := make([]string, len(activity))
	for i, a := range activity {
		types[i] = string(a.Type)
	}
	assert.Contains(t, types, "account.created")
	assert.Contains(t, types, "journal.posted")
	assert.Contains(t, types, "journal.reversed")
	assert.Contains(t, types, "account.deactivated")

	require.Equal(t, http.StatusOK, api.call(http.MethodGet, "/api/v1/activity?limit=2", nil, &activity))
	assert.Len(t, activity, 2)
}
