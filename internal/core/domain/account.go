package domain

import (
	"fmt"
	"strings"
)

// AccountType is the closed set of chart-of-accounts classes.
type AccountType string

const (
	Asset     AccountType = "assets"
	Liability AccountType = "liabilities"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expenses"
)

// AccountTypes lists every valid AccountType in chart order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// ParseAccountType accepts only the canonical lower-case names.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalSide is derived from the type and never stored independently.
func (t AccountType) NormalSide() NormalSide {
	switch t {
	case Asset, Expense:
		return DebitSide
	default:
		return CreditSide
	}
}

// IsIncomeStatement reports whether balances of this type close into earnings.
func (t AccountType) IsIncomeStatement() bool {
	return t == Revenue || t == Expense
}

// NormalSide is the side on which an account's balance increases.
type NormalSide string

const (
	DebitSide  NormalSide = "debit"
	CreditSide NormalSide = "credit"
)

// ReportCategory places revenue and expense accounts into income-statement sections.
type ReportCategory string

const (
	CategoryNone         ReportCategory = ""
	CategorySales        ReportCategory = "SALES"
	CategoryOtherIncome  ReportCategory = "OTHER_INCOME"
	CategoryCostOfGoods  ReportCategory = "COST_OF_GOODS"
	CategoryOperating    ReportCategory = "OPERATING"
	CategoryNonOperating ReportCategory = "NON_OPERATING"
)

// DefaultReportCategory is applied when an account is created without a category.
func DefaultReportCategory(t AccountType) ReportCategory {
	switch t {
	case Revenue:
		return CategorySales
	case Expense:
		return CategoryOperating
	default:
		return CategoryNone
	}
}

// AllowedFor reports whether c may be assigned to an account of type t.
func (c ReportCategory) AllowedFor(t AccountType) bool {
	switch t {
	case Revenue:
		return c == CategorySales || c == CategoryOtherIncome
	case Expense:
		return c == CategoryCostOfGoods || c == CategoryOperating || c == CategoryNonOperating
	default:
		return c == CategoryNone
	}
}

// Account is a node in the chart of accounts.
type Account struct {
	AccountID          string         `json:"accountId"`
	Code               string         `json:"code"`
	Name               string         `json:"name"`
	AccountType        AccountType    `json:"type"`
	CurrencyCode       string         `json:"currency"`
	ReportCategory     ReportCategory `json:"reportCategory,omitempty"`
	AllowDirectPosting bool           `json:"allowDirectPosting"`
	IsActive           bool           `json:"isActive"`
	ParentAccountID    string         `json:"parentId,omitempty"`
	Description        string         `json:"description,omitempty"`
	AuditFields
}

// NormalSide is a shortcut for AccountType.NormalSide.
func (a Account) NormalSide() NormalSide {
	return a.AccountType.NormalSide()
}

// Postable reports whether journal lines may reference the account.
func (a Account) Postable() bool {
	return a.IsActive && a.AllowDirectPosting
}
