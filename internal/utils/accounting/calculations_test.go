package accounting_test

import (
	"testing"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestToBase(t *testing.T) {
	assert.True(t, accounting.ToBase(d("500"), d("250")).Equal(d("125000")))
	assert.True(t, accounting.ToBase(d("10"), d("0.00012345")).Equal(d("0.001")))
	assert.True(t, accounting.ToBase(d("1"), d("1")).Equal(d("1")))
}

func TestSignedAmount(t *testing.T) {
	debit := domain.AccountEntry{DebitAmount: d("100"), AmountInBaseCurrency: d("100")}
	credit := domain.AccountEntry{CreditAmount: d("100"), AmountInBaseCurrency: d("100")}

	assert.True(t, accounting.SignedAmount(debit, domain.DebitSide).Equal(d("100")))
	assert.True(t, accounting.SignedAmount(credit, domain.DebitSide).Equal(d("-100")))
	assert.True(t, accounting.SignedAmount(debit, domain.CreditSide).Equal(d("-100")))
	assert.True(t, accounting.SignedAmount(credit, domain.CreditSide).Equal(d("100")))
}

func TestTotals(t *testing.T) {
	lines := []domain.AccountEntry{
		{DebitAmount: d("500"), AmountInBaseCurrency: d("125000")},
		{CreditAmount: d("100000"), AmountInBaseCurrency: d("100000")},
		{CreditAmount: d("25000"), AmountInBaseCurrency: d("25000")},
	}
	debit, credit := accounting.Totals(lines)
	assert.True(t, debit.Equal(d("125000")))
	assert.True(t, credit.Equal(d("125000")))
}

func TestSplitBalance(t *testing.T) {
	tests := []struct {
		name       string
		balance    string
		normal     domain.NormalSide
		wantDebit  string
		wantCredit string
	}{
		{"debit normal positive", "1000", domain.DebitSide, "1000", "0"},
		{"debit normal overdrawn", "-50", domain.DebitSide, "0", "50"},
		{"credit normal positive", "1000", domain.CreditSide, "0", "1000"},
		{"credit normal negative", "-20", domain.CreditSide, "20", "0"},
		{"zero", "0", domain.CreditSide, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit := accounting.SplitBalance(d(tt.balance), tt.normal)
			assert.True(t, debit.Equal(d(tt.wantDebit)), "debit %s", debit)
			assert.True(t, credit.Equal(d(tt.wantCredit)), "credit %s", credit)
		})
	}
}

func TestMarginAndGrowth(t *testing.T) {
	assert.True(t, accounting.Margin(d("60000"), d("100000")).Equal(d("60")))
	assert.True(t, accounting.Margin(d("1"), d("3")).Equal(d("33.33")))
	assert.True(t, accounting.Margin(d("-5"), d("0")).IsZero())

	assert.True(t, accounting.Growth(d("150"), d("100")).Equal(d("50")))
	assert.True(t, accounting.Growth(d("50"), d("100")).Equal(d("-50")))
	assert.True(t, accounting.Growth(d("50"), d("0")).IsZero())
}
