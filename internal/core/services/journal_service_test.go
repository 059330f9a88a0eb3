package services_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/core/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/repositories/memory"
	"github.com/SscSPs/spice_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(suite.T())
	suite.ctx = context.Background()
}

func (suite *JournalServiceTestSuite) TestPostEntry_BaseCurrencySale() {
	f := suite.f

	entry := f.post(suite.T(), "2024-01-10", "1000", f.cash, f.sales)

	suite.Equal("JE-000001", entry.EntryNumber)
	suite.Equal(domain.StatusPosted, entry.Status)
	suite.Equal(domain.EntryNormal, entry.Type)
	suite.Equal("YER", entry.BaseCurrency)
	suite.Require().NotNil(entry.PostedAt)
	suite.Equal(fixedNow, *entry.PostedAt)
	suite.True(entry.TotalDebit.Equal(dec("1000")))
	suite.True(entry.TotalCredit.Equal(dec("1000")))
	for _, l := range entry.Lines {
		suite.Equal("YER", l.CurrencyCode)
		suite.True(l.ExchangeRate.Equal(decimal.NewFromInt(1)))
	}

	suite.True(f.balance(suite.T(), f.cash, "2024-01-10").Equal(dec("1000")))
	suite.True(f.balance(suite.T(), f.sales, "2024-01-10").Equal(dec("1000")))
	suite.True(f.balance(suite.T(), f.cash, "2024-01-09").IsZero())
	suite.Equal([]domain.EventType{domain.EventJournalPosted}, f.events.types())
}

func (suite *JournalServiceTestSuite) TestPostEntry_ForeignCurrencyUsesStoredRate() {
	f := suite.f
	draft := domain.JournalEntry{
		Date:        mustDate("2024-01-15"),
		Description: "USD sale",
		Lines: []domain.AccountEntry{
			debitLine(f.usdCash, "500", ""),
			creditLine(f.sales, "125000", "YER"),
		},
	}

	entry, err := f.journal.PostEntry(suite.ctx, draft, "user-1")

	suite.Require().NoError(err)
	suite.Equal("USD", entry.Lines[0].CurrencyCode)
	suite.True(entry.Lines[0].ExchangeRate.Equal(dec("250")))
	suite.True(entry.Lines[0].AmountInBaseCurrency.Equal(dec("125000")))
	suite.True(entry.TotalDebit.Equal(entry.TotalCredit))
	suite.True(f.balance(suite.T(), f.usdCash, "2024-01-31").Equal(dec("125000")))
}

func (suite *JournalServiceTestSuite) TestPostEntry_CallerRateOverridesStoredRate() {
	f := suite.f
	rate := dec("251.1234")
	draft := domain.JournalEntry{
		Date:        mustDate("2024-01-15"),
		Description: "USD sale at bank rate",
		Lines: []domain.AccountEntry{
			{AccountID: f.usdCash, DebitAmount: dec("10.01"), ExchangeRate: rate},
			creditLine(f.sales, "2513.745", ""),
		},
	}

	entry, err := f.journal.PostEntry(suite.ctx, draft, "user-1")

	suite.Require().NoError(err)
	suite.True(entry.Lines[0].ExchangeRate.Equal(rate))
	// 10.01 * 251.1234 = 2513.745234, rounded to three places
	suite.True(entry.Lines[0].AmountInBaseCurrency.Equal(dec("2513.745")))
}

func (suite *JournalServiceTestSuite) TestPostEntry_UnbalancedLeavesLedgerUntouched() {
	f := suite.f
	f.post(suite.T(), "2024-01-10", "1000", f.cash, f.sales)
	before := f.balance(suite.T(), f.cash, "2024-12-31")

	draft := domain.JournalEntry{
		Date:        mustDate("2024-01-11"),
		Description: "Short credit",
		Lines: []domain.AccountEntry{
			debitLine(f.cash, "1000", ""),
			creditLine(f.sales, "900", ""),
		},
	}
	entry, err := f.journal.PostEntry(suite.ctx, draft, "user-1")

	suite.Nil(entry)
	var unbalanced *apperrors.UnbalancedEntryError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.True(unbalanced.Difference().Equal(dec("100")))
	suite.Equal(1, f.ledger.Len())
	suite.True(f.balance(suite.T(), f.cash, "2024-12-31").Equal(before))
	suite.Len(f.events.events, 1)
}

func (suite *JournalServiceTestSuite) TestPostEntry_WithinEpsilonIsBalanced() {
	f := suite.f
	draft := domain.JournalEntry{
		Date:        mustDate("2024-01-15"),
		Description: "Rounding",
		Lines: []domain.AccountEntry{
			debitLine(f.cash, "100.0004", ""),
			creditLine(f.sales, "100", ""),
		},
	}

	_, err := f.journal.PostEntry(suite.ctx, draft, "user-1")

	suite.NoError(err)
}

func (suite *JournalServiceTestSuite) TestPostEntry_ValidationOrder() {
	f := suite.f
	testCases := []struct {
		name   string
		draft  domain.JournalEntry
		target error
		field  string
	}{
		{
			name:   "description checked before line count",
			draft:  domain.JournalEntry{Date: mustDate("2024-01-01"), Lines: []domain.AccountEntry{debitLine(f.cash, "1", "")}},
			target: apperrors.ErrValidation,
			field:  "description",
		},
		{
			name:   "single line",
			draft:  domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{debitLine(f.cash, "1", "")}},
			target: apperrors.ErrValidation,
			field:  "lines",
		},
		{
			name: "repeated account",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				debitLine(f.cash, "1", ""), creditLine(f.cash, "1", ""),
			}},
			target: apperrors.ErrValidation,
			field:  "lines[1].accountId",
		},
		{
			name: "both sides positive",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				{AccountID: f.cash, DebitAmount: dec("1"), CreditAmount: dec("1")}, creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrValidation,
			field:  "lines[0]",
		},
		{
			name: "negative amount",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				debitLine(f.cash, "-1", ""), creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrValidation,
			field:  "lines[0]",
		},
		{
			name:   "missing date",
			draft:  domain.JournalEntry{Description: "x", Lines: []domain.AccountEntry{debitLine(f.cash, "1", ""), creditLine(f.sales, "1", "")}},
			target: apperrors.ErrValidation,
			field:  "date",
		},
		{
			name: "foreign base currency",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", BaseCurrency: "USD", Lines: []domain.AccountEntry{
				debitLine(f.cash, "1", ""), creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrValidation,
			field:  "baseCurrency",
		},
		{
			name: "unbalanced reported before inactive account",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				debitLine(f.inactive, "2", ""), creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrUnbalancedEntry,
		},
		{
			name: "inactive account",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				debitLine(f.inactive, "1", ""), creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrInactiveAccount,
		},
		{
			name: "summary account",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				debitLine(f.summary, "1", ""), creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrInactiveAccount,
		},
		{
			name: "unknown account",
			draft: domain.JournalEntry{Date: mustDate("2024-01-01"), Description: "x", Lines: []domain.AccountEntry{
				debitLine("acc-nope", "1", ""), creditLine(f.sales, "1", ""),
			}},
			target: apperrors.ErrValidation,
			field:  "lines[0].accountId",
		},
		{
			name: "no rate before first effective date",
			draft: domain.JournalEntry{Date: mustDate("2023-12-31"), Description: "x", Lines: []domain.AccountEntry{
				debitLine(f.sarCash, "1", ""), creditLine(f.sales, "66.5", ""),
			}},
			target: apperrors.ErrRateNotFound,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			entry, err := f.journal.PostEntry(suite.ctx, tc.draft, "user-1")
			suite.Nil(entry)
			suite.Require().ErrorIs(err, tc.target)
			if tc.field != "" {
				var verr *apperrors.ValidationError
				suite.Require().ErrorAs(err, &verr)
				suite.Equal(tc.field, verr.Field)
			}
		})
	}
	suite.Equal(0, f.ledger.Len())
}

func (suite *JournalServiceTestSuite) TestPostEntry_RequiresUser() {
	_, err := suite.f.journal.PostEntry(suite.ctx, simpleDraft("2024-01-01", "1", suite.f.cash, suite.f.sales), "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestValidateEntry_DoesNotPost() {
	f := suite.f
	draft := domain.JournalEntry{
		Date:        mustDate("2024-02-01"),
		Description: "Dry run",
		Lines: []domain.AccountEntry{
			debitLine(f.usdCash, "2", ""),
			creditLine(f.sales, "500", ""),
		},
	}

	entry, err := f.journal.ValidateEntry(suite.ctx, draft)

	suite.Require().NoError(err)
	suite.True(entry.TotalDebit.Equal(dec("500")))
	suite.Empty(entry.EntryNumber)
	suite.Equal(0, f.ledger.Len())
	suite.Empty(f.events.events)
}

func (suite *JournalServiceTestSuite) TestEntryNumbering() {
	f := suite.f
	first := f.post(suite.T(), "2024-01-01", "1", f.cash, f.sales)
	suite.Equal("JE-000001", first.EntryNumber)

	manual := simpleDraft("2024-01-01", "1", f.cash, f.sales)
	manual.EntryNumber = "JE-000002"
	_, err := f.journal.PostEntry(suite.ctx, manual, "user-1")
	suite.Require().NoError(err)

	// The generated JE-000002 collides and the engine moves on.
	third := f.post(suite.T(), "2024-01-01", "1", f.cash, f.sales)
	suite.Equal("JE-000003", third.EntryNumber)

	again := simpleDraft("2024-01-02", "1", f.cash, f.sales)
	again.EntryNumber = "JE-000002"
	_, err = f.journal.PostEntry(suite.ctx, again, "user-1")
	var dup *apperrors.DuplicateEntryError
	suite.ErrorAs(err, &dup)
	suite.Equal(3, f.ledger.Len())
}

func (suite *JournalServiceTestSuite) TestDraftLifecycle() {
	f := suite.f
	draft, err := f.journal.SaveDraft(suite.ctx, simpleDraft("2024-01-05", "300", f.rent, f.cash), "user-1")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, draft.Status)
	suite.Equal(0, f.ledger.Len())

	found, err := f.journal.GetEntryByID(suite.ctx, draft.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, found.Status)

	posted, err := f.journal.PostDraft(suite.ctx, draft.EntryID, "user-2")
	suite.Require().NoError(err)
	suite.Equal(draft.EntryID, posted.EntryID)
	suite.Equal(domain.StatusPosted, posted.Status)
	suite.True(f.balance(suite.T(), f.rent, "2024-01-31").Equal(dec("300")))

	_, err = f.journal.PostDraft(suite.ctx, draft.EntryID, "user-2")
	suite.ErrorIs(err, apperrors.ErrConflict)
	_, err = f.journal.CancelDraft(suite.ctx, draft.EntryID, "user-2")
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal(1, f.ledger.Len())
}

func (suite *JournalServiceTestSuite) TestCancelDraft() {
	f := suite.f
	draft, err := f.journal.SaveDraft(suite.ctx, simpleDraft("2024-01-05", "300", f.rent, f.cash), "user-1")
	suite.Require().NoError(err)

	cancelled, err := f.journal.CancelDraft(suite.ctx, draft.EntryID, "user-1")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, cancelled.Status)

	_, err = f.journal.PostDraft(suite.ctx, draft.EntryID, "user-1")
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Equal([]domain.EventType{domain.EventDraftCancelled}, f.events.types())
}

func (suite *JournalServiceTestSuite) TestSaveDraft_ChecksShapeOnly() {
	f := suite.f
	// Unbalanced drafts are allowed; posting them is not.
	unbalanced := domain.JournalEntry{
		Date:        mustDate("2024-01-05"),
		Description: "work in progress",
		Lines:       []domain.AccountEntry{debitLine(f.rent, "300", ""), creditLine(f.cash, "200", "")},
	}
	draft, err := f.journal.SaveDraft(suite.ctx, unbalanced, "user-1")
	suite.Require().NoError(err)

	_, err = f.journal.PostDraft(suite.ctx, draft.EntryID, "user-1")
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	_, err = f.journal.SaveDraft(suite.ctx, domain.JournalEntry{Date: mustDate("2024-01-05")}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestApproveEntry() {
	f := suite.f
	entry := f.post(suite.T(), "2024-01-10", "1000", f.cash, f.sales)

	approved, err := f.journal.ApproveEntry(suite.ctx, entry.EntryID, "approver")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, approved.Status)
	suite.Equal("approver", approved.ApprovedBy)
	suite.True(f.balance(suite.T(), f.cash, "2024-01-31").Equal(dec("1000")))

	_, err = f.journal.ApproveEntry(suite.ctx, entry.EntryID, "approver")
	suite.ErrorIs(err, apperrors.ErrConflict)

	_, err = f.journal.ApproveEntry(suite.ctx, "missing", "approver")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestReverseEntry() {
	f := suite.f
	original := f.post(suite.T(), "2024-01-10", "1000", f.cash, f.sales)

	reversal, err := f.journal.ReverseEntry(suite.ctx, original.EntryID, mustDate("2024-01-20"), "", "user-1")
	suite.Require().NoError(err)
	suite.Equal(original.EntryID, reversal.ReversesEntryID)
	suite.Equal(domain.EntryAdjustment, reversal.Type)
	suite.Equal("Reversal of "+original.EntryNumber, reversal.Description)
	suite.Equal(original.EntryNumber, reversal.Reference)
	suite.True(reversal.Lines[0].CreditAmount.Equal(dec("1000")))

	suite.True(f.balance(suite.T(), f.cash, "2024-01-15").Equal(dec("1000")))
	suite.True(f.balance(suite.T(), f.cash, "2024-01-20").IsZero())
	suite.True(f.balance(suite.T(), f.sales, "2024-01-20").IsZero())

	_, err = f.journal.ReverseEntry(suite.ctx, original.EntryID, time.Time{}, "", "user-1")
	suite.ErrorIs(err, apperrors.ErrConflict)
	_, err = f.journal.ReverseEntry(suite.ctx, reversal.EntryID, time.Time{}, "", "user-1")
	suite.ErrorIs(err, apperrors.ErrConflict)

	suite.Equal([]domain.EventType{
		domain.EventJournalPosted,
		domain.EventJournalPosted,
		domain.EventJournalReversed,
	}, f.events.types())
}

func (suite *JournalServiceTestSuite) TestReverseEntry_DefaultsToToday() {
	f := suite.f
	original := f.post(suite.T(), "2024-01-10", "1000", f.cash, f.sales)

	reversal, err := f.journal.ReverseEntry(suite.ctx, original.EntryID, time.Time{}, "Customer refund", "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.DateOf(fixedNow), reversal.Date)
	suite.Equal("Customer refund", reversal.Description)
}

func (suite *JournalServiceTestSuite) TestListEntries_Paging() {
	f := suite.f
	for _, date := range []string{"2024-01-03", "2024-01-01", "2024-01-02", "2024-01-02", "2024-02-01"} {
		f.post(suite.T(), date, "10", f.cash, f.sales)
	}

	var numbers []string
	params := dto.ListJournalEntriesParams{FromDate: "2024-01-01", ToDate: "2024-01-31", Limit: 2}
	for pages := 0; ; pages++ {
		suite.Require().Less(pages, 5)
		page, err := f.journal.ListEntries(suite.ctx, params)
		suite.Require().NoError(err)
		for _, e := range page.Entries {
			numbers = append(numbers, e.EntryNumber)
		}
		if page.NextToken == nil {
			break
		}
		params.NextToken = *page.NextToken
	}

	suite.Equal([]string{"JE-000002", "JE-000003", "JE-000004", "JE-000001"}, numbers)
}

func (suite *JournalServiceTestSuite) TestListEntries_InvalidParams() {
	_, err := suite.f.journal.ListEntries(suite.ctx, dto.ListJournalEntriesParams{FromDate: "2024-02-01", ToDate: "2024-01-01"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.journal.ListEntries(suite.ctx, dto.ListJournalEntriesParams{NextToken: "not-a-token"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestStreamEntries_FiltersByAccount() {
	f := suite.f
	f.post(suite.T(), "2024-01-01", "10", f.cash, f.sales)
	f.post(suite.T(), "2024-01-02", "10", f.rent, f.bank)

	var got []string
	for e, err := range f.journal.StreamEntries(suite.ctx, mustDate("2024-01-01"), mustDate("2024-12-31"), f.bank) {
		suite.Require().NoError(err)
		got = append(got, e.EntryNumber)
	}
	suite.Equal([]string{"JE-000002"}, got)
}

// Balances of a randomly generated multi-currency ledger always net to zero.
func (suite *JournalServiceTestSuite) TestRandomLedgerStaysBalanced() {
	f := suite.f
	rng := rand.New(rand.NewPCG(7, 11))
	randAmount := func() decimal.Decimal {
		return decimal.New(rng.Int64N(1_000_000)+1, -2)
	}
	counterparts := []string{f.sales, f.otherIncome, f.payables, f.capital}

	for i := range 200 {
		date := mustDate("2024-01-01").AddDate(0, 0, rng.IntN(90))
		usd, sar := randAmount(), randAmount()
		usdRate := decimal.New(int64(240_000+rng.IntN(20_000)), -3)
		base := accounting.ToBase(usd, usdRate).Add(accounting.ToBase(sar, dec("66.5")))

		lines := []domain.AccountEntry{
			{AccountID: f.usdCash, DebitAmount: usd, ExchangeRate: usdRate},
			{AccountID: f.sarCash, DebitAmount: sar},
			{AccountID: counterparts[rng.IntN(len(counterparts))], CreditAmount: base},
		}
		if i%3 == 0 {
			for j := range lines {
				lines[j] = lines[j].Reversed()
			}
		}
		_, err := f.journal.PostEntry(suite.ctx, domain.JournalEntry{Date: date, Description: "random", Lines: lines}, "user-1")
		suite.Require().NoError(err)
	}

	tb, err := f.reporting.TrialBalance(suite.ctx, mustDate("2024-12-31"))
	suite.Require().NoError(err)
	suite.True(tb.IsBalanced)
	suite.True(tb.TotalDebits.Equal(tb.TotalCredits), "debits %s credits %s", tb.TotalDebits, tb.TotalCredits)

	for e, err := range f.ledger.EntriesInRange(suite.ctx, mustDate("2024-01-01"), mustDate("2024-12-31"), "") {
		suite.Require().NoError(err)
		suite.True(e.TotalDebit.Equal(e.TotalCredit))
	}
}

func (suite *JournalServiceTestSuite) TestRandomUnbalancedEntriesAreRejected() {
	f := suite.f
	rng := rand.New(rand.NewPCG(3, 5))
	randAmount := func() decimal.Decimal {
		return decimal.New(rng.Int64N(1_000_000)+1, -2)
	}
	counterparts := []string{f.sales, f.otherIncome, f.payables, f.capital}
	watched := append([]string{f.usdCash, f.sarCash}, counterparts...)
	endOfYear := mustDate("2024-12-31")

	for i := range 150 {
		date := mustDate("2024-01-01").AddDate(0, 0, rng.IntN(90))
		usd, sar := randAmount(), randAmount()
		usdRate := decimal.New(int64(240_000+rng.IntN(20_000)), -3)
		base := accounting.ToBase(usd, usdRate).Add(accounting.ToBase(sar, dec("66.5")))
		counterpart := counterparts[rng.IntN(len(counterparts))]

		// Off by 0.001 up to 2 in base currency, either way.
		skew := decimal.New(int64(1+rng.IntN(2000)), -3)
		if rng.IntN(2) == 0 {
			skew = skew.Neg()
		}
		lines := []domain.AccountEntry{
			{AccountID: f.usdCash, DebitAmount: usd, ExchangeRate: usdRate},
			{AccountID: f.sarCash, DebitAmount: sar},
			{AccountID: counterpart, CreditAmount: base.Add(skew)},
		}
		if i%3 == 0 {
			for j := range lines {
				lines[j] = lines[j].Reversed()
			}
		}

		before := map[string]decimal.Decimal{}
		for _, id := range watched {
			before[id] = f.balance(suite.T(), id, "2024-12-31")
		}
		count := f.ledger.Len()

		entry, err := f.journal.PostEntry(suite.ctx, domain.JournalEntry{Date: date, Description: "skewed", Lines: lines}, "user-1")
		suite.Require().ErrorIs(err, apperrors.ErrUnbalancedEntry, "skew %s", skew)
		suite.Nil(entry)
		suite.Equal(count, f.ledger.Len())
		for _, id := range watched {
			after, err := f.ledger.BalanceOf(suite.ctx, id, endOfYear)
			suite.Require().NoError(err)
			suite.True(after.Equal(before[id]), "balance of %s moved from %s to %s", id, before[id], after)
		}

		// Keep the ledger growing so rejections are checked against a non-empty store.
		lines[2] = domain.AccountEntry{AccountID: counterpart, CreditAmount: base}
		if i%3 == 0 {
			lines[2] = lines[2].Reversed()
		}
		_, err = f.journal.PostEntry(suite.ctx, domain.JournalEntry{Date: date, Description: "balanced", Lines: lines}, "user-1")
		suite.Require().NoError(err)
	}
	suite.Equal(150, f.ledger.Len())
}

// Three-line entries posted concurrently on disjoint accounts are seen whole or not at all.
func (suite *JournalServiceTestSuite) TestConcurrentThreeLineEntriesAreAtomic() {
	f := suite.f
	const writers, perWriter = 6, 30
	type triple struct{ a, b, c string }
	triples := make([]triple, writers)
	for w := range writers {
		triples[w] = triple{
			a: f.addAccount(suite.T(), fmt.Sprintf("17%02d", w), domain.Asset, "YER", domain.CategoryNone),
			b: f.addAccount(suite.T(), fmt.Sprintf("18%02d", w), domain.Asset, "YER", domain.CategoryNone),
			c: f.addAccount(suite.T(), fmt.Sprintf("19%02d", w), domain.Asset, "YER", domain.CategoryNone),
		}
	}
	asOf := mustDate("2024-12-31")

	stop := make(chan struct{})
	readerErr := make(chan error, 1)
	go func() {
		defer close(readerErr)
		for {
			select {
			case <-stop:
				return
			default:
			}
			balances, err := f.ledger.AccountBalancesAsOf(suite.ctx, asOf)
			if err != nil {
				readerErr <- err
				return
			}
			for _, tr := range triples {
				a, b, c := balances[tr.a], balances[tr.b], balances[tr.c]
				if !b.Equal(c) || !a.Add(b).Add(c).IsZero() {
					readerErr <- fmt.Errorf("partial entry visible: %s %s %s", a, b, c)
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for _, tr := range triples {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				amount := decimal.NewFromInt(int64(i + 1))
				_, err := f.journal.PostEntry(suite.ctx, domain.JournalEntry{
					Date:        mustDate("2024-02-01"),
					Description: "split receipt",
					Lines: []domain.AccountEntry{
						{AccountID: tr.a, DebitAmount: amount.Add(amount)},
						{AccountID: tr.b, CreditAmount: amount},
						{AccountID: tr.c, CreditAmount: amount},
					},
				}, "user-1")
				assert.NoError(suite.T(), err)
			}
		}()
	}
	wg.Wait()
	close(stop)
	for err := range readerErr {
		suite.Require().NoError(err)
	}

	suite.Equal(writers*perWriter, f.ledger.Len())
	sum := decimal.NewFromInt(perWriter * (perWriter + 1) / 2)
	for _, tr := range triples {
		suite.True(f.balance(suite.T(), tr.a, "2024-12-31").Equal(sum.Add(sum)))
		suite.True(f.balance(suite.T(), tr.b, "2024-12-31").Equal(sum.Neg()))
		suite.True(f.balance(suite.T(), tr.c, "2024-12-31").Equal(sum.Neg()))
	}
}

func (suite *JournalServiceTestSuite) TestConcurrentPosting() {
	f := suite.f
	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			debit := f.cash
			if i%2 == 0 {
				debit = f.bank
			}
			_, err := f.journal.PostEntry(suite.ctx, simpleDraft("2024-03-01", "25", debit, f.sales), "user-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.Require().NoError(err)
	}

	suite.Equal(workers, f.ledger.Len())
	seen := map[string]bool{}
	for e, err := range f.ledger.EntriesInRange(suite.ctx, mustDate("2024-03-01"), mustDate("2024-03-01"), "") {
		suite.Require().NoError(err)
		suite.False(seen[e.EntryNumber], "duplicate number %s", e.EntryNumber)
		seen[e.EntryNumber] = true
	}
	suite.True(f.balance(suite.T(), f.sales, "2024-03-01").Equal(dec("1000")))
}

func TestJournalService(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func TestPostEntry_ConverterErrorIsReturned(t *testing.T) {
	accounts := new(MockAccountRepository)
	ledger := new(MockLedgerRepository)
	converter := new(MockConverter)
	svc := services.NewJournalService(accounts, ledger, new(MockDraftRepository), converter, "YER")
	ctx := context.Background()

	accounts.On("FindAccountsByIDs", ctx, []string{"usd", "rev"}).Return(map[string]domain.Account{
		"usd": {AccountID: "usd", CurrencyCode: "USD", AccountType: domain.Asset, IsActive: true, AllowDirectPosting: true},
		"rev": {AccountID: "rev", CurrencyCode: "YER", AccountType: domain.Revenue, IsActive: true, AllowDirectPosting: true},
	}, nil).Once()
	converter.On("Rate", ctx, "USD", "YER", mustDate("2024-01-01")).Return(decimal.Zero, assert.AnError).Once()

	_, err := svc.PostEntry(ctx, simpleDraft("2024-01-01", "1", "usd", "rev"), "user-1")

	require.ErrorIs(t, err, assert.AnError)
	ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	converter.AssertExpectations(t)
}

func TestPostEntry_RetriesGeneratedNumberOnlyUpToLimit(t *testing.T) {
	accounts := new(MockAccountRepository)
	ledger := new(MockLedgerRepository)
	svc := services.NewJournalService(accounts, ledger, new(MockDraftRepository), new(MockConverter), "YER")
	ctx := context.Background()

	accounts.On("FindAccountsByIDs", ctx, mock.Anything).Return(map[string]domain.Account{
		"a": {AccountID: "a", CurrencyCode: "YER", AccountType: domain.Asset, IsActive: true, AllowDirectPosting: true},
		"b": {AccountID: "b", CurrencyCode: "YER", AccountType: domain.Revenue, IsActive: true, AllowDirectPosting: true},
	}, nil)
	ledger.On("NextEntryNumber", mock.Anything).Return("JE-000001", nil)
	ledger.On("Append", mock.Anything, mock.Anything).Return(&apperrors.DuplicateEntryError{EntryNumber: "JE-000001"})

	_, err := svc.PostEntry(ctx, simpleDraft("2024-01-01", "1", "a", "b"), "user-1")

	require.ErrorIs(t, err, apperrors.ErrDuplicate)
	ledger.AssertNumberOfCalls(t, "Append", 5)
}

// failingDraftStatus keeps drafts in memory but cannot record status changes.
type failingDraftStatus struct {
	*memory.DraftRepository
}

func (failingDraftStatus) UpdateDraftStatus(context.Context, string, domain.EntryStatus, string, time.Time) error {
	return assert.AnError
}

func TestPostDraft_StatusUpdateFailureKeepsPostedEntry(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	journal := services.NewJournalService(f.accounts, f.ledger, failingDraftStatus{f.drafts}, f.converter, "YER",
		services.WithJournalEvents(f.events))

	draft, err := journal.SaveDraft(ctx, simpleDraft("2024-01-05", "300", f.rent, f.cash), "user-1")
	require.NoError(t, err)

	posted, err := journal.PostDraft(ctx, draft.EntryID, "user-2")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPosted, posted.Status)
	assert.Equal(t, 1, f.ledger.Len())
	assert.Equal(t, []domain.EventType{domain.EventJournalPosted}, f.events.types())
}
