package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/tenant-billing/internal/domain"
)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateCompany(ctx context.Context, request *domain.CreateCompanyRequest) (*domain.CompanyWithStatus, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyWithStatus), args.Error(1)
}

func (m *MockBillingService) ListCompanyStatuses(ctx context.Context) ([]domain.CompanyWithStatus, time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, time.Time{}, args.Error(2)
	}
	return args.Get(0).([]domain.CompanyWithStatus), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockBillingService) GetCompanyStatus(ctx context.Context, companyID uuid.UUID) (*domain.CompanyWithStatus, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyWithStatus), args.Error(1)
}

func (m *MockBillingService) GetSummary(ctx context.Context) (domain.StatusSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.StatusSummary), args.Error(1)
}

func (m *MockBillingService) GetBanner(ctx context.Context, companyID uuid.UUID) (domain.Banner, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(domain.Banner), args.Error(1)
}

func (m *MockBillingService) RegisterPayment(ctx context.Context, companyID uuid.UUID, request *domain.RegisterPaymentRequest) (*domain.RegisterPaymentResponse, error) {
	args := m.Called(ctx, companyID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterPaymentResponse), args.Error(1)
}

func (m *MockBillingService) ListPayments(ctx context.Context, companyID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockBillingService) GetLatestPayment(ctx context.Context, companyID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockBillingService) UpdatePaymentControl(ctx context.Context, companyID uuid.UUID, control domain.PaymentControl) (*domain.CompanyWithStatus, error) {
	args := m.Called(ctx, companyID, control)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyWithStatus), args.Error(1)
}

func (m *MockBillingService) SetActive(ctx context.Context, companyID uuid.UUID, active bool) (*domain.CompanyWithStatus, error) {
	args := m.Called(ctx, companyID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyWithStatus), args.Error(1)
}

// NewMockBillingService creates a new mock billing service instance
func NewMockBillingService() *MockBillingService {
	return &MockBillingService{}
}
