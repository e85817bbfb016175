package caisseclient

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report holds statistics derived from a window of operations, typically the page the
// client currently holds. It says nothing about rows outside that window; use
// Client.Summary for whole-ledger totals.
type Report struct {
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TodayOperations  int
	WeeklyOperations int
	OperationsByType map[OperationType]int
}

// WindowedReport computes a Report over ops. "Today" starts at local midnight of now
// and "this week" seven days before that.
func WindowedReport(ops []Operation, now time.Time) Report {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := midnight.AddDate(0, 0, -7)

	r := Report{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		OperationsByType: make(map[OperationType]int),
	}
	withdrawn := decimal.Zero
	for _, op := range ops {
		switch op.OperationType {
		case Deposit:
			r.TotalDeposits = r.TotalDeposits.Add(op.Amount)
		case Withdrawal:
			withdrawn = withdrawn.Add(op.Amount)
		}
		if !op.Timestamp.Before(midnight) {
			r.TodayOperations++
		}
		if !op.Timestamp.Before(weekStart) {
			r.WeeklyOperations++
		}
		r.OperationsByType[op.OperationType]++
	}
	r.TotalWithdrawals = withdrawn.Abs()
	return r
}
