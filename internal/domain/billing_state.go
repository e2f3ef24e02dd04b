package domain

import "time"

// BillingState is the single classification of a company for dashboards
type BillingState string

const (
	BillingStateActive    BillingState = "active"
	BillingStateDueSoon   BillingState = "due_soon"
	BillingStateOverdue   BillingState = "overdue"
	BillingStateNoPayment BillingState = "no_payment"
	BillingStateInactive  BillingState = "inactive"
)

// StatusSummary holds per-state counts for the admin dashboard cards and chart
type StatusSummary struct {
	Total     int       `json:"total"`
	Active    int       `json:"active"`
	DueSoon   int       `json:"dueSoon"`
	Overdue   int       `json:"overdue"`
	NoPayment int       `json:"noPayment"`
	Inactive  int       `json:"inactive"`
	AsOf      time.Time `json:"asOf"`
}

// Banner severities
const (
	BannerSeverityUrgent = "urgent"
	BannerSeverityInfo   = "info"
)

// Banner is the in-app billing notice shown to a company's users
type Banner struct {
	Show               bool         `json:"show"`
	State              BillingState `json:"state"`
	Severity           string       `json:"severity,omitempty"`
	Message            string       `json:"message,omitempty"`
	DaysUntilDue       *int         `json:"daysUntilDue,omitempty"`
	NextPaymentDueDate *time.Time   `json:"nextPaymentDueDate,omitempty"`
}
