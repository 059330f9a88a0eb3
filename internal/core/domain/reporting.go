package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's balance split by side.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountId"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"type"`
	NormalSide    NormalSide      `json:"normalSide"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	NetBalance    decimal.Decimal `json:"netBalance"`
}

// TrialBalance lists every account balance at a date.
type TrialBalance struct {
	AsOfDate     time.Time         `json:"asOfDate"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	Variance     decimal.Decimal   `json:"variance"`
	IsBalanced   bool              `json:"isBalanced"`
}

// Row returns the row for accountID.
func (tb TrialBalance) Row(accountID string) (TrialBalanceRow, bool) {
	for _, r := range tb.Rows {
		if r.AccountID == accountID {
			return r, true
		}
	}
	return TrialBalanceRow{}, false
}

// ReportPeriod is an inclusive date range.
type ReportPeriod struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Contains reports whether d falls inside the period.
func (p ReportPeriod) Contains(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// AccountAmount is a single report line.
type AccountAmount struct {
	AccountID string          `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReportSection is a titled group of lines with their subtotal.
type ReportSection struct {
	Items    []AccountAmount `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Add appends an item and accumulates the subtotal.
func (s *ReportSection) Add(item AccountAmount) {
	s.Items = append(s.Items, item)
	s.Subtotal = s.Subtotal.Add(item.Amount)
}

// IncomeStatement is the profit and loss for a period.
type IncomeStatement struct {
	Period            ReportPeriod    `json:"period"`
	Revenue           ReportSection   `json:"revenue"`
	CostOfGoodsSold   ReportSection   `json:"costOfGoodsSold"`
	OperatingExpenses ReportSection   `json:"operatingExpenses"`
	OtherIncome       ReportSection   `json:"otherIncome"`
	OtherExpenses     ReportSection   `json:"otherExpenses"`
	GrossProfit       decimal.Decimal `json:"grossProfit"`
	OperatingProfit   decimal.Decimal `json:"operatingProfit"`
	NetProfit         decimal.Decimal `json:"netProfit"`
	GrossMargin       decimal.Decimal `json:"grossMargin"`
	OperatingMargin   decimal.Decimal `json:"operatingMargin"`
	NetMargin         decimal.Decimal `json:"netMargin"`
}

// BalanceSheet is the statement of financial position at a date.
type BalanceSheet struct {
	AsOfDate               time.Time       `json:"asOfDate"`
	Assets                 ReportSection   `json:"assets"`
	Liabilities            ReportSection   `json:"liabilities"`
	Equity                 ReportSection   `json:"equity"`
	CurrentEarnings        decimal.Decimal `json:"currentEarnings"`
	TotalLiabilitiesEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
	IsBalanced             bool            `json:"isBalanced"`
}

// AccountStats are display aggregates for the accounts overview.
type AccountStats struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetProfit     decimal.Decimal `json:"netProfit"`
	TotalAssets   decimal.Decimal `json:"totalAssets"`
	RevenueGrowth decimal.Decimal `json:"revenueGrowth"`
	ExpenseGrowth decimal.Decimal `json:"expenseGrowth"`
}

// AccountsOverview pairs the chart with its headline figures.
type AccountsOverview struct {
	Accounts []Account    `json:"accounts"`
	Stats    AccountStats `json:"stats"`
}
