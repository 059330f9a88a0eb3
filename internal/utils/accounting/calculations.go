package accounting

import (
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// hundred is used for percentage maths.
var hundred = decimal.NewFromInt(100)

// ToBase converts a line amount into the base currency at the ledger's fixed precision.
func ToBase(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(domain.BaseCurrencyPlaces)
}

// SignedAmount applies the correct sign to a line's base amount for an account's normal side.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedAmount(line domain.AccountEntry, normal domain.NormalSide) decimal.Decimal {
	if line.Side() == normal {
		return line.AmountInBaseCurrency
	}
	return line.AmountInBaseCurrency.Neg()
}

// Totals sums debit and credit lines in base currency.
func Totals(lines []domain.AccountEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.IsDebit() {
			debit = debit.Add(l.AmountInBaseCurrency)
		} else {
			credit = credit.Add(l.AmountInBaseCurrency)
		}
	}
	return debit.Round(domain.BaseCurrencyPlaces), credit.Round(domain.BaseCurrencyPlaces)
}

// SplitBalance places a normal-direction balance on the debit or credit column.
func SplitBalance(balance decimal.Decimal, normal domain.NormalSide) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	positiveSide := normal
	if balance.IsNegative() {
		if normal == domain.DebitSide {
			positiveSide = domain.CreditSide
		} else {
			positiveSide = domain.DebitSide
		}
	}
	if positiveSide == domain.DebitSide {
		debit = balance.Abs()
	} else {
		credit = balance.Abs()
	}
	return debit, credit
}

// Margin returns profit / revenue * 100 to two places, or zero without revenue.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}

// Growth returns the percent change from previous to current, or zero when previous is zero.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2)
}
