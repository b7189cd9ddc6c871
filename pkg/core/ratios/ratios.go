// Package ratios projects a simplified balance sheet from the chart-of-
// accounts balance list and computes the four standard ratio groups. Every
// ratio with a zero or negative denominator resolves to 0, never NaN/Inf.
package ratios

import (
	"strings"

	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

// BalanceSheet is the simplified projection the ratio math runs on.
type BalanceSheet struct {
	CurrentAssets      float64 `json:"current_assets"`
	TotalAssets        float64 `json:"total_assets"`
	Cash               float64 `json:"cash"`
	Receivables        float64 `json:"receivables"`
	Inventory          float64 `json:"inventory"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	Payables           float64 `json:"payables"`
	Equity             float64 `json:"equity"`
}

type Liquidity struct {
	CurrentRatio   float64 `json:"current_ratio"`
	QuickRatio     float64 `json:"quick_ratio"`
	CashRatio      float64 `json:"cash_ratio"`
	WorkingCapital float64 `json:"working_capital"`
}

type Profitability struct {
	GrossMargin    float64 `json:"gross_margin"`
	NetMargin      float64 `json:"net_margin"`
	ReturnOnAssets float64 `json:"return_on_assets"`
	ReturnOnEquity float64 `json:"return_on_equity"`
}

type Efficiency struct {
	AssetTurnover        float64 `json:"asset_turnover"`
	ReceivablesTurnover  float64 `json:"receivables_turnover"`
	PayablesTurnover     float64 `json:"payables_turnover"`
	DaysSalesOutstanding float64 `json:"days_sales_outstanding"`
}

type Leverage struct {
	DebtToEquity     float64 `json:"debt_to_equity"`
	DebtToAssets     float64 `json:"debt_to_assets"`
	InterestCoverage float64 `json:"interest_coverage"`
}

type FinancialRatios struct {
	Liquidity     Liquidity     `json:"liquidity"`
	Profitability Profitability `json:"profitability"`
	Efficiency    Efficiency    `json:"efficiency"`
	Leverage      Leverage      `json:"leverage"`
	BalanceSheet  BalanceSheet  `json:"balance_sheet"`
}

// ProjectBalanceSheet folds the account balances into the simplified
// projection. Cash, receivables, inventory and payables are recognized by
// account name; the Current flag separates short-term assets/liabilities.
func ProjectBalanceSheet(accounts []models.Account) BalanceSheet {
	var bs BalanceSheet
	for _, a := range accounts {
		name := strings.ToLower(a.Name)
		switch a.Type {
		case models.AccountAsset:
			bs.TotalAssets += a.Balance
			if a.Current {
				bs.CurrentAssets += a.Balance
			}
			switch {
			case strings.Contains(name, "cash") || strings.Contains(name, "bank"):
				bs.Cash += a.Balance
			case strings.Contains(name, "receivable"):
				bs.Receivables += a.Balance
			case strings.Contains(name, "inventory"):
				bs.Inventory += a.Balance
			}
		case models.AccountLiability:
			bs.TotalLiabilities += a.Balance
			if a.Current {
				bs.CurrentLiabilities += a.Balance
			}
			if strings.Contains(name, "payable") {
				bs.Payables += a.Balance
			}
		case models.AccountEquity:
			bs.Equity += a.Balance
		}
	}
	return bs
}

// Compute derives all four ratio groups from the dataset. costRatio is the
// direct-cost approximation (share of revenue) used for the gross margin.
func Compute(ds *models.AnalyticsDataset, costRatio float64) FinancialRatios {
	if costRatio <= 0 {
		costRatio = 0.6
	}

	bs := ProjectBalanceSheet(ds.Accounts)

	// Flow figures cover the requested period only; the dataset may carry
	// earlier baseline rows that must not inflate revenue or expenses.
	var revenue float64
	for _, inv := range ds.Invoices {
		if inv.Status == models.InvoiceDraft || !ds.Range.Contains(inv.IssuedAt) {
			continue
		}
		revenue += inv.Amount
	}

	var totalExpenses, interestExpense float64
	for _, e := range ds.Expenses {
		if !ds.Range.Contains(e.IncurredAt) {
			continue
		}
		totalExpenses += e.Amount
		if strings.Contains(strings.ToLower(e.Category), "interest") {
			interestExpense += e.Amount
		}
	}

	cogs := revenue * costRatio
	grossProfit := revenue - cogs
	netProfit := revenue - totalExpenses
	operatingProfit := revenue - (totalExpenses - interestExpense)

	receivablesTurnover := stats.SafeRatio(revenue, bs.Receivables)

	return FinancialRatios{
		BalanceSheet: bs,
		Liquidity: Liquidity{
			CurrentRatio:   stats.SafeRatio(bs.CurrentAssets, bs.CurrentLiabilities),
			QuickRatio:     stats.SafeRatio(bs.CurrentAssets-bs.Inventory, bs.CurrentLiabilities),
			CashRatio:      stats.SafeRatio(bs.Cash, bs.CurrentLiabilities),
			WorkingCapital: bs.CurrentAssets - bs.CurrentLiabilities,
		},
		Profitability: Profitability{
			GrossMargin:    stats.SafeRatio(grossProfit, revenue) * 100,
			NetMargin:      stats.SafeRatio(netProfit, revenue) * 100,
			ReturnOnAssets: stats.SafeRatio(netProfit, bs.TotalAssets) * 100,
			ReturnOnEquity: stats.SafeRatio(netProfit, bs.Equity) * 100,
		},
		Efficiency: Efficiency{
			AssetTurnover:        stats.SafeRatio(revenue, bs.TotalAssets),
			ReceivablesTurnover:  receivablesTurnover,
			PayablesTurnover:     stats.SafeRatio(cogs, bs.Payables),
			DaysSalesOutstanding: stats.SafeRatio(365, receivablesTurnover),
		},
		Leverage: Leverage{
			DebtToEquity:     stats.SafeRatio(bs.TotalLiabilities, bs.Equity),
			DebtToAssets:     stats.SafeRatio(bs.TotalLiabilities, bs.TotalAssets),
			InterestCoverage: stats.SafeRatio(operatingProfit, interestExpense),
		},
	}
}
