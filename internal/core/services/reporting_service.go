package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(accountRepo portsrepo.AccountReader, repo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{
		accountRepo:   accountRepo,
		reportingRepo: repo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	asOf = domain.DateOf(asOf)
	balances, err := s.reportingRepo.AccountBalancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("asOf", asOf.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	tb := &domain.TrialBalance{
		AsOfDate:     asOf,
		Rows:         []domain.TrialBalanceRow{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, acc := range accounts {
		balance, ok := balances[acc.AccountID]
		if !ok {
			balance = decimal.Zero
		}
		if !acc.IsActive && balance.IsZero() {
			continue
		}
		debit, credit := accounting.SplitBalance(balance, acc.NormalSide())
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			AccountID:     acc.AccountID,
			Code:          acc.Code,
			Name:          acc.Name,
			AccountType:   acc.AccountType,
			NormalSide:    acc.NormalSide(),
			DebitBalance:  debit,
			CreditBalance: credit,
			NetBalance:    balance,
		})
		tb.TotalDebits = tb.TotalDebits.Add(debit)
		tb.TotalCredits = tb.TotalCredits.Add(credit)
	}
	tb.Variance = tb.TotalDebits.Sub(tb.TotalCredits)
	tb.IsBalanced = domain.WithinEpsilon(tb.TotalDebits, tb.TotalCredits)

	if !tb.IsBalanced {
		err := &apperrors.InvariantViolationError{Invariant: "trial balance debits equal credits", Variance: tb.Variance}
		s.LogError(ctx, err, "Trial balance does not balance",
			slog.String("asOf", asOf.Format(domain.DateLayout)),
			slog.String("total_debits", tb.TotalDebits.String()),
			slog.String("total_credits", tb.TotalCredits.String()))
		return tb, err
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", asOf.Format(domain.DateLayout)),
		slog.Int("row_count", len(tb.Rows)))
	return tb, nil
}

// IncomeStatement sorts revenue and expense movements into sections by report category.
func (s *reportingService) IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatement, error) {
	start, end = domain.DateOf(start), domain.DateOf(end)
	if end.Before(start) {
		return nil, apperrors.NewValidationError("toDate", "period end is before its start")
	}
	movements, err := s.reportingRepo.AccountMovements(ctx, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve income statement data",
			slog.String("from", start.Format(domain.DateLayout)),
			slog.String("to", end.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to retrieve income statement data: %w", err)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	is := &domain.IncomeStatement{Period: domain.ReportPeriod{StartDate: start, EndDate: end}}
	for _, acc := range accounts {
		if !acc.AccountType.IsIncomeStatement() {
			continue
		}
		amount, ok := movements[acc.AccountID]
		if !ok || amount.IsZero() {
			continue
		}
		item := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: amount}
		category := acc.ReportCategory
		if category == domain.CategoryNone {
			category = domain.DefaultReportCategory(acc.AccountType)
		}
		switch category {
		case domain.CategorySales:
			is.Revenue.Add(item)
		case domain.CategoryOtherIncome:
			is.OtherIncome.Add(item)
		case domain.CategoryCostOfGoods:
			is.CostOfGoodsSold.Add(item)
		case domain.CategoryNonOperating:
			is.OtherExpenses.Add(item)
		default:
			is.OperatingExpenses.Add(item)
		}
	}

	is.GrossProfit = is.Revenue.Subtotal.Sub(is.CostOfGoodsSold.Subtotal)
	is.OperatingProfit = is.GrossProfit.Sub(is.OperatingExpenses.Subtotal)
	is.NetProfit = is.OperatingProfit.Add(is.OtherIncome.Subtotal).Sub(is.OtherExpenses.Subtotal)
	is.GrossMargin = accounting.Margin(is.GrossProfit, is.Revenue.Subtotal)
	is.OperatingMargin = accounting.Margin(is.OperatingProfit, is.Revenue.Subtotal)
	is.NetMargin = accounting.Margin(is.NetProfit, is.Revenue.Subtotal)

	s.LogInfo(ctx, "Income statement generated successfully",
		slog.String("from", start.Format(domain.DateLayout)),
		slog.String("to", end.Format(domain.DateLayout)),
		slog.String("net_profit", is.NetProfit.String()))
	return is, nil
}

// BalanceSheet generates a balance sheet report as of a specific date
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	asOf = domain.DateOf(asOf)
	balances, err := s.reportingRepo.AccountBalancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data",
			slog.String("asOf", asOf.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	bs := &domain.BalanceSheet{AsOfDate: asOf}
	for _, acc := range accounts {
		balance, ok := balances[acc.AccountID]
		if !ok || balance.IsZero() {
			continue
		}
		item := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: balance}
		switch acc.AccountType {
		case domain.Asset:
			bs.Assets.Add(item)
		case domain.Liability:
			bs.Liabilities.Add(item)
		case domain.Equity:
			bs.Equity.Add(item)
		case domain.Revenue:
			bs.CurrentEarnings = bs.CurrentEarnings.Add(balance)
		case domain.Expense:
			bs.CurrentEarnings = bs.CurrentEarnings.Sub(balance)
		}
	}
	bs.TotalLiabilitiesEquity = bs.Liabilities.Subtotal.Add(bs.Equity.Subtotal).Add(bs.CurrentEarnings)
	bs.IsBalanced = domain.WithinEpsilon(bs.Assets.Subtotal, bs.TotalLiabilitiesEquity)

	if !bs.IsBalanced {
		err := &apperrors.InvariantViolationError{
			Invariant: "assets equal liabilities plus equity",
			Variance:  bs.Assets.Subtotal.Sub(bs.TotalLiabilitiesEquity),
		}
		s.LogError(ctx, err, "Balance sheet does not balance", slog.String("asOf", asOf.Format(domain.DateLayout)))
		return bs, err
	}
	return bs, nil
}

// AccountStats totals revenue, expenses and assets up to asOf and compares the
// month containing asOf with the month before it.
func (s *reportingService) AccountStats(ctx context.Context, asOf time.Time) (*domain.AccountStats, error) {
	asOf = domain.DateOf(asOf)
	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	types := make(map[string]domain.AccountType, len(accounts))
	for _, a := range accounts {
		types[a.AccountID] = a.AccountType
	}

	sumByType := func(amounts map[string]decimal.Decimal, t domain.AccountType) decimal.Decimal {
		total := decimal.Zero
		for id, amount := range amounts {
			if types[id] == t {
				total = total.Add(amount)
			}
		}
		return total
	}

	balances, err := s.reportingRepo.AccountBalancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve account balances for stats")
		return nil, err
	}

	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.AddDate(0, 0, -1)
	current, err := s.reportingRepo.AccountMovements(ctx, monthStart, asOf)
	if err != nil {
		return nil, err
	}
	previous, err := s.reportingRepo.AccountMovements(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	stats := &domain.AccountStats{
		TotalRevenue:  sumByType(balances, domain.Revenue),
		TotalExpenses: sumByType(balances, domain.Expense),
		TotalAssets:   sumByType(balances, domain.Asset),
		RevenueGrowth: accounting.Growth(sumByType(current, domain.Revenue), sumByType(previous, domain.Revenue)),
		ExpenseGrowth: accounting.Growth(sumByType(current, domain.Expense), sumByType(previous, domain.Expense)),
	}
	stats.NetProfit = stats.TotalRevenue.Sub(stats.TotalExpenses)
	return stats, nil
}
