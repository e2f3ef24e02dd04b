// Package subscription derives the billing status of tenant companies.
//
// Everything here is a pure function of the company records and the
// observation time: nothing is read from or written to storage, and the
// derived values must be recomputed for every observation.
package subscription

import (
	"time"

	"github.com/segyhp/tenant-billing/internal/domain"
	"github.com/segyhp/tenant-billing/pkg/utils"
)

// DueSoonWindowDays is the inclusive lookahead for the due-soon flag
const DueSoonWindowDays = 5

// Calculate annotates each company with its derived billing status as of now.
// The output has the same length and order as the input and the input is
// not modified. Calendar-day arithmetic happens in now's location.
func Calculate(companies []domain.Company, now time.Time) []domain.CompanyWithStatus {
	result := make([]domain.CompanyWithStatus, 0, len(companies))
	for _, company := range companies {
		result = append(result, CalculateOne(company, now))
	}
	return result
}

// CalculateOne derives the status of a single company
func CalculateOne(company domain.Company, now time.Time) domain.CompanyWithStatus {
	status := domain.CompanyWithStatus{
		Company:                company,
		HasNoPaymentRegistered: company.LastPaymentDate == nil,
	}

	loc := now.Location()
	today := utils.StartOfDay(now)

	switch company.PaymentControl {
	case domain.PaymentControlPermanent:
		status.IsOverdue = status.HasNoPaymentRegistered
		return status
	case domain.PaymentControlMonthly, domain.PaymentControlAnnual:
	default:
		// unknown billing configuration is treated as non-compliant
		status.IsOverdue = true
		return status
	}

	anchor, ok := anchorDate(company, loc)
	if !ok {
		// unparseable payment date: no schedule can be derived
		status.IsOverdue = true
		return status
	}

	due := utils.StartOfDay(utils.AddMonths(anchor, 1))
	if company.PaymentControl == domain.PaymentControlAnnual {
		due = utils.StartOfDay(utils.AddYears(anchor, 1))
	}

	status.NextPaymentDueDate = &due
	status.IsOverdue = today.After(due)

	if !status.IsOverdue {
		days := utils.CalendarDaysBetween(today, due)
		status.DaysUntilDue = &days
		status.IsPaymentDueSoon = days >= 0 && days <= DueSoonWindowDays
	}

	return status
}

// anchorDate is the last payment date when present, else the creation time
func anchorDate(company domain.Company, loc *time.Location) (time.Time, bool) {
	if company.LastPaymentDate == nil {
		return company.CreatedAt.In(loc), true
	}

	paid, err := utils.ParseDate(*company.LastPaymentDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return paid, true
}

// Classify maps a derived status to exactly one billing state.
// Priority: no payment, manually inactive, overdue, due soon, active.
func Classify(status domain.CompanyWithStatus) domain.BillingState {
	switch {
	case status.HasNoPaymentRegistered:
		return domain.BillingStateNoPayment
	case !status.IsActive:
		return domain.BillingStateInactive
	case status.IsOverdue:
		return domain.BillingStateOverdue
	case status.IsPaymentDueSoon:
		return domain.BillingStateDueSoon
	default:
		return domain.BillingStateActive
	}
}

// Summarize counts companies per billing state
func Summarize(statuses []domain.CompanyWithStatus, asOf time.Time) domain.StatusSummary {
	summary := domain.StatusSummary{
		Total: len(statuses),
		AsOf:  asOf,
	}

	for _, status := range statuses {
		switch Classify(status) {
		case domain.BillingStateNoPayment:
			summary.NoPayment++
		case domain.BillingStateInactive:
			summary.Inactive++
		case domain.BillingStateOverdue:
			summary.Overdue++
		case domain.BillingStateDueSoon:
			summary.DueSoon++
		default:
			summary.Active++
		}
	}

	return summary
}
