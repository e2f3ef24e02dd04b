package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/tenant-billing/internal/domain"
)

// CompanyRepository defines the interface for company data operations
type CompanyRepository interface {
	// Create creates a new company
	Create(ctx context.Context, company *domain.Company) error

	// GetByID retrieves a company by its ID, sql.ErrNoRows if absent
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)

	// List retrieves all companies ordered by creation
	List(ctx context.Context) ([]domain.Company, error)

	// UpdatePaymentControl changes the billing cadence of a company
	UpdatePaymentControl(ctx context.Context, id uuid.UUID, control domain.PaymentControl) error

	// SetActive sets the operator controlled active flag
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create records a payment and advances the company's last payment date
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByCompanyID retrieves all payments for a company, newest first
	GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.Payment, error)

	// GetLatestPayment gets the most recent payment for a company
	GetLatestPayment(ctx context.Context, companyID uuid.UUID) (*domain.Payment, error)
}
