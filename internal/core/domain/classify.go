package domain

import (
	"strings"
	"time"
)

// DueDateLayout is the wire format for bill due dates.
const DueDateLayout = "2006-01-02"

const (
	elevatedAmountThreshold = 500.0
	criticalDaysThreshold   = 3
	warningDaysThreshold    = 7
)

// DaysUntil returns the whole-day distance from now's calendar date to the
// given ISO due date. The count is negative for overdue bills. ok is false
// when the date is empty or unparseable.
func DaysUntil(dueDate string, now time.Time) (int, bool) {
	trimmed := strings.TrimSpace(dueDate)
	if trimmed == "" {
		return 0, false
	}
	due, err := time.Parse(DueDateLayout, trimmed)
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(today) / (24 * time.Hour)), true
}

// Classify maps a bill to its risk tier. Missing bills, missing amounts and
// missing or malformed due dates fail open to SAFE: a case is never blocked
// on incomplete data. Amounts must strictly exceed the threshold to elevate;
// the day windows are inclusive. CRITICAL is evaluated before WARNING so the
// tighter window wins when both match.
func Classify(bill *BillRecord, now time.Time) RiskLevel {
	if bill == nil {
		return RiskSafe
	}
	days, ok := DaysUntil(bill.DueDate, now)
	if !ok {
		return RiskSafe
	}
	amount := bill.Amount()
	switch {
	case amount > elevatedAmountThreshold && days <= criticalDaysThreshold:
		return RiskCritical
	case amount > elevatedAmountThreshold && days <= warningDaysThreshold:
		return RiskWarning
	default:
		return RiskSafe
	}
}
