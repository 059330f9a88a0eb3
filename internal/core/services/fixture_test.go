package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/core/services"
	"github.com/SscSPs/spice_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ledgerFixture wires the real services over the in-memory repositories.
type ledgerFixture struct {
	accounts  *memory.AccountRepository
	rates     *memory.ExchangeRateRepository
	drafts    *memory.DraftRepository
	ledger    *memory.LedgerStore
	events    *recordingDispatcher
	journal   portssvc.JournalSvcFacade
	reporting portssvc.ReportingService
	converter portssvc.ExchangeRateSvcFacade

	cash, usdCash, sarCash, bank string
	sales, otherIncome           string
	cogs, rent, interest         string
	capital, payables            string
	inactive, summary            string
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		accounts: memory.NewAccountRepository(),
		rates:    memory.NewExchangeRateRepository(),
		drafts:   memory.NewDraftRepository(),
		events:   &recordingDispatcher{},
	}
	f.ledger = memory.NewLedgerStore(f.accounts)

	currencies := services.NewCurrencyService("YER", []string{"USD", "SAR"})
	f.converter = services.NewExchangeRateService(f.rates, currencies)
	f.journal = services.NewJournalService(f.accounts, f.ledger, f.drafts, f.converter, "YER",
		services.WithJournalEvents(f.events),
		services.WithJournalClock(func() time.Time { return fixedNow }),
	)
	f.reporting = services.NewReportingService(f.accounts, f.ledger)

	f.cash = f.addAccount(t, "1110", domain.Asset, "YER", domain.CategoryNone)
	f.usdCash = f.addAccount(t, "1120", domain.Asset, "USD", domain.CategoryNone)
	f.sarCash = f.addAccount(t, "1130", domain.Asset, "SAR", domain.CategoryNone)
	f.bank = f.addAccount(t, "1210", domain.Asset, "YER", domain.CategoryNone)
	f.payables = f.addAccount(t, "2110", domain.Liability, "YER", domain.CategoryNone)
	f.capital = f.addAccount(t, "3100", domain.Equity, "YER", domain.CategoryNone)
	f.sales = f.addAccount(t, "4100", domain.Revenue, "YER", domain.CategorySales)
	f.otherIncome = f.addAccount(t, "4900", domain.Revenue, "YER", domain.CategoryOtherIncome)
	f.cogs = f.addAccount(t, "5100", domain.Expense, "YER", domain.CategoryCostOfGoods)
	f.rent = f.addAccount(t, "5200", domain.Expense, "YER", domain.CategoryOperating)
	f.interest = f.addAccount(t, "5900", domain.Expense, "YER", domain.CategoryNonOperating)
	f.inactive = f.addAccount(t, "1999", domain.Asset, "YER", domain.CategoryNone)
	f.summary = f.addAccount(t, "1000", domain.Asset, "YER", domain.CategoryNone)

	ctx := context.Background()
	require.NoError(t, f.accounts.DeactivateAccount(ctx, f.inactive, "setup", fixedNow))
	summary, err := f.accounts.FindAccountByID(ctx, f.summary)
	require.NoError(t, err)
	summary.AllowDirectPosting = false
	require.NoError(t, f.accounts.UpdateAccount(ctx, *summary))

	f.addRate(t, "USD", "YER", "250", "2024-01-01")
	f.addRate(t, "SAR", "YER", "66.5", "2024-01-01")
	return f
}

func (f *ledgerFixture) addAccount(t *testing.T, code string, typ domain.AccountType, currency string, category domain.ReportCategory) string {
	t.Helper()
	acc := domain.Account{
		AccountID:          "acc-" + code,
		Code:               code,
		Name:               "Account " + code,
		AccountType:        typ,
		CurrencyCode:       currency,
		ReportCategory:     category,
		AllowDirectPosting: true,
		IsActive:           true,
		AuditFields:        domain.NewAuditFields("setup", fixedNow),
	}
	require.NoError(t, f.accounts.SaveAccount(context.Background(), acc))
	return acc.AccountID
}

func (f *ledgerFixture) addRate(t *testing.T, from, to, rate, date string) {
	t.Helper()
	effective, err := domain.ParseDate(date)
	require.NoError(t, err)
	require.NoError(t, f.rates.SaveExchangeRate(context.Background(), domain.ExchangeRate{
		ExchangeRateID: from + to + date,
		FromCurrency:   from,
		ToCurrency:     to,
		Rate:           decimal.RequireFromString(rate),
		DateEffective:  effective,
	}))
}

// post records a two-line entry in base currency and fails the test on error.
func (f *ledgerFixture) post(t *testing.T, date string, amount string, debit, credit string) *domain.JournalEntry {
	t.Helper()
	e, err := f.journal.PostEntry(context.Background(), simpleDraft(date, amount, debit, credit), "user-1")
	require.NoError(t, err)
	return e
}

func (f *ledgerFixture) balance(t *testing.T, accountID string, date string) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.BalanceOf(context.Background(), accountID, mustDate(date))
	require.NoError(t, err)
	return b
}

func simpleDraft(date, amount, debit, credit string) domain.JournalEntry {
	return domain.JournalEntry{
		Date:        mustDate(date),
		Description: "Entry on " + date,
		Lines: []domain.AccountEntry{
			debitLine(debit, amount, ""),
			creditLine(credit, amount, ""),
		},
	}
}

func debitLine(accountID, amount, currency string) domain.AccountEntry {
	return domain.AccountEntry{AccountID: accountID, DebitAmount: decimal.RequireFromString(amount), CurrencyCode: currency}
}

func creditLine(accountID, amount, currency string) domain.AccountEntry {
	return domain.AccountEntry{AccountID: accountID, CreditAmount: decimal.RequireFromString(amount), CurrencyCode: currency}
}

func mustDate(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
