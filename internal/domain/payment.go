package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a registered subscription payment of a company
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CompanyID   uuid.UUID       `json:"companyId" db:"company_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate string          `json:"paymentDate" db:"payment_date"` // yyyy-MM-dd
	Notes       string          `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

type RegisterPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	PaymentDate string          `json:"paymentDate" validate:"required,datetime=2006-01-02"`
	Notes       string          `json:"notes" validate:"max=500"`
}

type RegisterPaymentResponse struct {
	Payment *Payment          `json:"payment"`
	Company CompanyWithStatus `json:"company"`
}
