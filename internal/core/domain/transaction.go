package domain

import (
	"github.com/shopspring/decimal"
)

// AccountEntry is one line of a journal entry. Exactly one of DebitAmount and
// CreditAmount is positive.
type AccountEntry struct {
	AccountID            string          `json:"accountId"`
	DebitAmount          decimal.Decimal `json:"debitAmount"`
	CreditAmount         decimal.Decimal `json:"creditAmount"`
	CurrencyCode         string          `json:"currency"`
	ExchangeRate         decimal.Decimal `json:"exchangeRate"`
	AmountInBaseCurrency decimal.Decimal `json:"amountInBaseCurrency"`
	Description          string          `json:"description,omitempty"`
}

// IsDebit reports whether the line debits its account.
func (l AccountEntry) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Side returns the side the line posts to.
func (l AccountEntry) Side() NormalSide {
	if l.IsDebit() {
		return DebitSide
	}
	return CreditSide
}

// Amount returns the positive amount in the line's own currency.
func (l AccountEntry) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// Reversed swaps debit and credit, keeping currency and rate.
func (l AccountEntry) Reversed() AccountEntry {
	l.DebitAmount, l.CreditAmount = l.CreditAmount, l.DebitAmount
	return l
}
