package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentControl is the billing cadence of a tenant company
type PaymentControl string

const (
	PaymentControlPermanent PaymentControl = "permanent"
	PaymentControlMonthly   PaymentControl = "monthly"
	PaymentControlAnnual    PaymentControl = "annual"
)

// IsKnown reports whether the cadence is one the calculator can schedule
func (p PaymentControl) IsKnown() bool {
	switch p {
	case PaymentControlPermanent, PaymentControlMonthly, PaymentControlAnnual:
		return true
	}
	return false
}

// Company represents a tenant company and its billing configuration
type Company struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	PaymentControl  PaymentControl `json:"paymentControl" db:"payment_control"`
	LastPaymentDate *string        `json:"lastPaymentDate" db:"last_payment_date"` // yyyy-MM-dd, nil if never paid
	IsActive        bool           `json:"isActive" db:"is_active"`
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" db:"updated_at"`
}

// CompanyWithStatus is a company annotated with its derived billing status.
// It is a view model: it is never persisted.
type CompanyWithStatus struct {
	Company
	IsOverdue              bool       `json:"isOverdue"`
	IsPaymentDueSoon       bool       `json:"isPaymentDueSoon"`
	HasNoPaymentRegistered bool       `json:"hasNoPaymentRegistered"`
	NextPaymentDueDate     *time.Time `json:"nextPaymentDueDate"`
	DaysUntilDue           *int       `json:"daysUntilDue,omitempty"`
}

// DTOs for requests and responses

type CreateCompanyRequest struct {
	Name           string         `json:"name" validate:"required,max=200"`
	PaymentControl PaymentControl `json:"paymentControl" validate:"required,payment_control"`
	IsActive       *bool          `json:"isActive"`
}

type UpdatePaymentControlRequest struct {
	PaymentControl PaymentControl `json:"paymentControl" validate:"required,payment_control"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type CompanyStatusResponse struct {
	State  BillingState      `json:"state"`
	Status CompanyWithStatus `json:"company"`
}
