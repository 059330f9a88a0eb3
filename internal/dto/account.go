package dto

import (
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code               string                `json:"code" binding:"required,max=20"`
	Name               string                `json:"name" binding:"required,max=120"`
	AccountType        domain.AccountType    `json:"type" binding:"required,oneof=assets liabilities equity revenue expenses"`
	CurrencyCode       string                `json:"currency" binding:"required,currency"`
	ReportCategory     domain.ReportCategory `json:"reportCategory" binding:"omitempty,oneof=SALES OTHER_INCOME COST_OF_GOODS OPERATING NON_OPERATING"`
	AllowDirectPosting *bool                 `json:"allowDirectPosting"` // Optional, defaults to true
	ParentAccountID    *string               `json:"parentId"`           // Optional, use pointer for nullability
	Description        string                `json:"description"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Type, currency and code are fixed once created.
type UpdateAccountRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=120"`
	Description        *string `json:"description"`
	AllowDirectPosting *bool   `json:"allowDirectPosting"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID          string                `json:"accountId"`
	Code               string                `json:"code"`
	Name               string                `json:"name"`
	AccountType        domain.AccountType    `json:"type"`
	NormalSide         domain.NormalSide     `json:"normalSide"`
	CurrencyCode       string                `json:"currency"`
	ReportCategory     domain.ReportCategory `json:"reportCategory,omitempty"`
	AllowDirectPosting bool                  `json:"allowDirectPosting"`
	IsActive           bool                  `json:"isActive"`
	ParentAccountID    string                `json:"parentId,omitempty"`
	Description        string                `json:"description,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
	LastUpdatedAt      time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy      string                `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:          acc.AccountID,
		Code:               acc.Code,
		Name:               acc.Name,
		AccountType:        acc.AccountType,
		NormalSide:         acc.NormalSide(),
		CurrencyCode:       acc.CurrencyCode,
		ReportCategory:     acc.ReportCategory,
		AllowDirectPosting: acc.AllowDirectPosting,
		IsActive:           acc.IsActive,
		ParentAccountID:    acc.ParentAccountID,
		Description:        acc.Description,
		CreatedAt:          acc.CreatedAt,
		CreatedBy:          acc.CreatedBy,
		LastUpdatedAt:      acc.LastUpdatedAt,
		LastUpdatedBy:      acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID    string          `json:"accountId"`
	AsOf         string          `json:"asOf"`
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currency"`
	Display      string          `json:"display"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeInactive bool `form:"includeInactive"`
}

// AccountBalanceParams defines query parameters for a balance lookup.
type AccountBalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,ledgerdate"` // Defaults to today
}

// AccountStatsResponse carries the headline figures shown next to the chart.
type AccountStatsResponse struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetProfit     decimal.Decimal `json:"netProfit"`
	TotalAssets   decimal.Decimal `json:"totalAssets"`
	RevenueGrowth decimal.Decimal `json:"revenueGrowth"`
	ExpenseGrowth decimal.Decimal `json:"expenseGrowth"`
}

// AccountsOverviewResponse is the body of GET /accounts.
type AccountsOverviewResponse struct {
	Accounts []AccountResponse    `json:"accounts"`
	Stats    AccountStatsResponse `json:"stats"`
}

// ToAccountsOverviewResponse converts the overview.
func ToAccountsOverviewResponse(o *domain.AccountsOverview) AccountsOverviewResponse {
	return AccountsOverviewResponse{
		Accounts: ToListAccountResponse(o.Accounts),
		Stats: AccountStatsResponse{
			TotalRevenue:  o.Stats.TotalRevenue,
			TotalExpenses: o.Stats.TotalExpenses,
			NetProfit:     o.Stats.NetProfit,
			TotalAssets:   o.Stats.TotalAssets,
			RevenueGrowth: o.Stats.RevenueGrowth,
			ExpenseGrowth: o.Stats.ExpenseGrowth,
		},
	}
}
