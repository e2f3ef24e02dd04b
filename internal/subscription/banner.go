package subscription

import (
	"fmt"
	"time"

	"github.com/segyhp/tenant-billing/internal/domain"
	"github.com/segyhp/tenant-billing/pkg/utils"
)

// UrgentThresholdDays is the day count at or below which a due-soon banner
// escalates to urgent. It is a separate policy from DueSoonWindowDays.
const UrgentThresholdDays = 1

// BuildBanner turns a derived status into the billing banner shown to the
// users of that company. It reuses DaysUntilDue from the calculator.
func BuildBanner(status domain.CompanyWithStatus) domain.Banner {
	state := Classify(status)
	banner := domain.Banner{
		State:              state,
		DaysUntilDue:       status.DaysUntilDue,
		NextPaymentDueDate: status.NextPaymentDueDate,
	}

	switch state {
	case domain.BillingStateActive:
		return banner
	case domain.BillingStateNoPayment:
		banner.Severity = domain.BannerSeverityUrgent
		banner.Message = "No payment has been registered for your subscription."
	case domain.BillingStateInactive:
		banner.Severity = domain.BannerSeverityUrgent
		banner.Message = "Your company account is inactive. Please contact support."
	case domain.BillingStateOverdue:
		banner.Severity = domain.BannerSeverityUrgent
		if status.NextPaymentDueDate == nil {
			banner.Message = "Your billing configuration is invalid. Please contact support."
		} else {
			banner.Message = fmt.Sprintf("Your payment is overdue since %s.", utils.FormatDate(*status.NextPaymentDueDate))
		}
	case domain.BillingStateDueSoon:
		days := 0
		if status.DaysUntilDue != nil {
			days = *status.DaysUntilDue
		}
		banner.Severity = domain.BannerSeverityInfo
		if days <= UrgentThresholdDays {
			banner.Severity = domain.BannerSeverityUrgent
		}
		banner.Message = dueSoonMessage(days)
	}

	banner.Show = true
	return banner
}

// BannerFor calculates the status of company at now and builds its banner
func BannerFor(company domain.Company, now time.Time) domain.Banner {
	return BuildBanner(CalculateOne(company, now))
}

func dueSoonMessage(days int) string {
	switch days {
	case 0:
		return "Your payment is due today."
	case 1:
		return "Your payment is due tomorrow."
	default:
		return fmt.Sprintf("Your payment is due in %d days.", days)
	}
}
