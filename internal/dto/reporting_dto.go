package dto

import (
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// TrialBalanceParams defines query parameters for the trial balance.
type TrialBalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,ledgerdate"` // Defaults to today
}

// PeriodParams defines the inclusive reporting window of the income statement.
type PeriodParams struct {
	FromDate string `form:"fromDate" binding:"required,ledgerdate"`
	ToDate   string `form:"toDate" binding:"required,ledgerdate"`
}

// BalanceSheetParams defines query parameters for the balance sheet.
type BalanceSheetParams struct {
	AsOf string `form:"asOf" binding:"omitempty,ledgerdate"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID     string             `json:"accountId"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"type"`
	NormalSide    domain.NormalSide  `json:"normalSide"`
	DebitBalance  decimal.Decimal    `json:"debitBalance"`
	CreditBalance decimal.Decimal    `json:"creditBalance"`
	NetBalance    decimal.Decimal    `json:"netBalance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf         string                    `json:"asOfDate"`
	BaseCurrency string                    `json:"baseCurrency"`
	Rows         []TrialBalanceRowResponse `json:"rows"`
	TotalDebits  decimal.Decimal           `json:"totalDebits"`
	TotalCredits decimal.Decimal           `json:"totalCredits"`
	Variance     decimal.Decimal           `json:"variance"`
	IsBalanced   bool                      `json:"isBalanced"`
	Warning      string                    `json:"warning,omitempty"`
	Display      struct {
		TotalDebits  string `json:"totalDebits"`
		TotalCredits string `json:"totalCredits"`
	} `json:"display"`
}

// ToTrialBalanceResponse converts a domain.TrialBalance.
func ToTrialBalanceResponse(tb *domain.TrialBalance, baseCurrency string) TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(tb.Rows))
	for i, r := range tb.Rows {
		rows[i] = TrialBalanceRowResponse(r)
	}
	res := TrialBalanceResponse{
		AsOf:         tb.AsOfDate.Format(domain.DateLayout),
		BaseCurrency: baseCurrency,
		Rows:         rows,
		TotalDebits:  tb.TotalDebits,
		TotalCredits: tb.TotalCredits,
		Variance:     tb.Variance,
		IsBalanced:   tb.IsBalanced,
	}
	res.Display.TotalDebits = utils.DisplayAmount(tb.TotalDebits, baseCurrency)
	res.Display.TotalCredits = utils.DisplayAmount(tb.TotalCredits, baseCurrency)
	return res
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string          `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReportSectionResponse is a group of report lines with their subtotal.
type ReportSectionResponse struct {
	Items    []AccountAmountResponse `json:"items"`
	Subtotal decimal.Decimal         `json:"subtotal"`
}

func toSectionResponse(s domain.ReportSection) ReportSectionResponse {
	items := make([]AccountAmountResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = AccountAmountResponse(it)
	}
	return ReportSectionResponse{Items: items, Subtotal: s.Subtotal}
}

// IncomeStatementResponse represents the income statement report response
type IncomeStatementResponse struct {
	FromDate          string                `json:"fromDate"`
	ToDate            string                `json:"toDate"`
	BaseCurrency      string                `json:"baseCurrency"`
	Revenue           ReportSectionResponse `json:"revenue"`
	CostOfGoodsSold   ReportSectionResponse `json:"costOfGoodsSold"`
	OperatingExpenses ReportSectionResponse `json:"operatingExpenses"`
	OtherIncome       ReportSectionResponse `json:"otherIncome"`
	OtherExpenses     ReportSectionResponse `json:"otherExpenses"`
	Summary           struct {
		GrossProfit     decimal.Decimal `json:"grossProfit"`
		OperatingProfit decimal.Decimal `json:"operatingProfit"`
		NetProfit       decimal.Decimal `json:"netProfit"`
		GrossMargin     decimal.Decimal `json:"grossMargin"`
		OperatingMargin decimal.Decimal `json:"operatingMargin"`
		NetMargin       decimal.Decimal `json:"netMargin"`
		NetProfitText   string          `json:"netProfitDisplay"`
	} `json:"summary"`
}

// ToIncomeStatementResponse converts a domain.IncomeStatement.
func ToIncomeStatementResponse(is *domain.IncomeStatement, baseCurrency string) IncomeStatementResponse {
	res := IncomeStatementResponse{
		FromDate:          is.Period.StartDate.Format(domain.DateLayout),
		ToDate:            is.Period.EndDate.Format(domain.DateLayout),
		BaseCurrency:      baseCurrency,
		Revenue:           toSectionResponse(is.Revenue),
		CostOfGoodsSold:   toSectionResponse(is.CostOfGoodsSold),
		OperatingExpenses: toSectionResponse(is.OperatingExpenses),
		OtherIncome:       toSectionResponse(is.OtherIncome),
		OtherExpenses:     toSectionResponse(is.OtherExpenses),
	}
	res.Summary.GrossProfit = is.GrossProfit
	res.Summary.OperatingProfit = is.OperatingProfit
	res.Summary.NetProfit = is.NetProfit
	res.Summary.GrossMargin = is.GrossMargin
	res.Summary.OperatingMargin = is.OperatingMargin
	res.Summary.NetMargin = is.NetMargin
	res.Summary.NetProfitText = utils.DisplayAmount(is.NetProfit, baseCurrency)
	return res
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf         string                `json:"asOfDate"`
	BaseCurrency string                `json:"baseCurrency"`
	Assets       ReportSectionResponse `json:"assets"`
	Liabilities  ReportSectionResponse `json:"liabilities"`
	Equity       ReportSectionResponse `json:"equity"`
	Warning      string                `json:"warning,omitempty"`
	Summary      struct {
		CurrentEarnings           decimal.Decimal `json:"currentEarnings"`
		TotalAssets               decimal.Decimal `json:"totalAssets"`
		TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
		IsBalanced                bool            `json:"isBalanced"`
	} `json:"summary"`
}

// ToBalanceSheetResponse converts a domain.BalanceSheet.
func ToBalanceSheetResponse(bs *domain.BalanceSheet, baseCurrency string) BalanceSheetResponse {
	res := BalanceSheetResponse{
		AsOf:         bs.AsOfDate.Format(domain.DateLayout),
		BaseCurrency: baseCurrency,
		Assets:       toSectionResponse(bs.Assets),
		Liabilities:  toSectionResponse(bs.Liabilities),
		Equity:       toSectionResponse(bs.Equity),
	}
	res.Summary.CurrentEarnings = bs.CurrentEarnings
	res.Summary.TotalAssets = bs.Assets.Subtotal
	res.Summary.TotalLiabilitiesAndEquity = bs.TotalLiabilitiesEquity
	res.Summary.IsBalanced = bs.IsBalanced
	return res
}
