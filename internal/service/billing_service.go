package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/tenant-billing/internal/domain"
	"github.com/segyhp/tenant-billing/internal/repository"
	"github.com/segyhp/tenant-billing/internal/subscription"
	customError "github.com/segyhp/tenant-billing/pkg/errors"
	"github.com/segyhp/tenant-billing/pkg/utils"
)

// SnapshotCache holds the raw company list between reads
type SnapshotCache interface {
	Get(ctx context.Context) ([]domain.Company, bool, error)
	Set(ctx context.Context, companies []domain.Company) error
	Invalidate(ctx context.Context) error
}

type BillingService struct {
	CompanyRepo repository.CompanyRepository
	PaymentRepo repository.PaymentRepository
	cache       SnapshotCache
	location    *time.Location
	clock       func() time.Time
	logger      zerolog.Logger
}

// Option customises a BillingService
type Option func(*BillingService)

// WithClock replaces time.Now as the observation clock
func WithClock(clock func() time.Time) Option {
	return func(s *BillingService) {
		s.clock = clock
	}
}

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *BillingService) {
		s.logger = logger
	}
}

func NewBillingService(
	companyRepo repository.CompanyRepository,
	paymentRepo repository.PaymentRepository,
	cache SnapshotCache,
	location *time.Location,
	opts ...Option,
) *BillingService {
	if location == nil {
		location = time.UTC
	}

	s := &BillingService{
		CompanyRepo: companyRepo,
		PaymentRepo: paymentRepo,
		cache:       cache,
		location:    location,
		clock:       time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now is the observation time in the billing location
func (s *BillingService) Now() time.Time {
	return s.clock().In(s.location)
}

// CreateCompany registers a new tenant company
func (s *BillingService) CreateCompany(ctx context.Context, request *domain.CreateCompanyRequest) (*domain.CompanyWithStatus, error) {
	if !request.PaymentControl.IsKnown() {
		return nil, customError.WrapInvalidPaymentControl(string(request.PaymentControl))
	}

	now := s.Now()
	company := &domain.Company{
		ID:             uuid.New(),
		Name:           request.Name,
		PaymentControl: request.PaymentControl,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if request.IsActive != nil {
		company.IsActive = *request.IsActive
	}

	if err := s.CompanyRepo.Create(ctx, company); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.invalidate(ctx)

	s.logger.Info().
		Str("company_id", company.ID.String()).
		Str("payment_control", string(company.PaymentControl)).
		Msg("company created")

	status := subscription.CalculateOne(*company, now)
	return &status, nil
}

// ListCompanyStatuses returns every company with its status derived at the
// returned observation time
func (s *BillingService) ListCompanyStatuses(ctx context.Context) ([]domain.CompanyWithStatus, time.Time, error) {
	companies, err := s.loadCompanies(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}

	now := s.Now()
	return subscription.Calculate(companies, now), now, nil
}

// GetCompanyStatus returns one company with its derived status
func (s *BillingService) GetCompanyStatus(ctx context.Context, companyID uuid.UUID) (*domain.CompanyWithStatus, error) {
	company, err := s.getCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	status := subscription.CalculateOne(*company, s.Now())
	return &status, nil
}

// GetSummary counts companies per billing state for the dashboard
func (s *BillingService) GetSummary(ctx context.Context) (domain.StatusSummary, error) {
	statuses, now, err := s.ListCompanyStatuses(ctx)
	if err != nil {
		return domain.StatusSummary{}, err
	}

	return subscription.Summarize(statuses, now), nil
}

// GetBanner builds the billing banner for the users of a company
func (s *BillingService) GetBanner(ctx context.Context, companyID uuid.UUID) (domain.Banner, error) {
	status, err := s.GetCompanyStatus(ctx, companyID)
	if err != nil {
		return domain.Banner{}, err
	}

	return subscription.BuildBanner(*status), nil
}

// RegisterPayment records a payment and returns the refreshed company status
func (s *BillingService) RegisterPayment(ctx context.Context, companyID uuid.UUID, request *domain.RegisterPaymentRequest) (*domain.RegisterPaymentResponse, error) {
	if !request.Amount.GreaterThan(decimal.Zero) {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	now := s.Now()
	paid, err := utils.ParseDate(request.PaymentDate, s.location)
	if err != nil {
		return nil, customError.WrapInvalidPaymentDate(request.PaymentDate)
	}
	if paid.After(utils.StartOfDay(now)) {
		return nil, customError.WrapPaymentDateInFuture(request.PaymentDate)
	}

	if _, err := s.getCompany(ctx, companyID); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Amount:      request.Amount.Round(2),
		PaymentDate: utils.FormatDate(paid),
		Notes:       request.Notes,
		CreatedAt:   now,
	}
	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		return nil, s.mapNotFound(err, companyID)
	}
	s.invalidate(ctx)

	s.logger.Info().
		Str("company_id", companyID.String()).
		Str("amount", payment.Amount.String()).
		Str("payment_date", payment.PaymentDate).
		Msg("payment registered")

	status, err := s.GetCompanyStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return &domain.RegisterPaymentResponse{
		Payment: payment,
		Company: *status,
	}, nil
}

// ListPayments returns the payment history of a company
func (s *BillingService) ListPayments(ctx context.Context, companyID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.getCompany(ctx, companyID); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if payments == nil {
		payments = []*domain.Payment{}
	}

	return payments, nil
}

// GetLatestPayment returns the most recent payment of a company
func (s *BillingService) GetLatestPayment(ctx context.Context, companyID uuid.UUID) (*domain.Payment, error) {
	if _, err := s.getCompany(ctx, companyID); err != nil {
		return nil, err
	}

	payment, err := s.PaymentRepo.GetLatestPayment(ctx, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNoPaymentRegistered(companyID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

// UpdatePaymentControl changes the billing cadence of a company
func (s *BillingService) UpdatePaymentControl(ctx context.Context, companyID uuid.UUID, control domain.PaymentControl) (*domain.CompanyWithStatus, error) {
	if !control.IsKnown() {
		return nil, customError.WrapInvalidPaymentControl(string(control))
	}

	if err := s.CompanyRepo.UpdatePaymentControl(ctx, companyID, control); err != nil {
		return nil, s.mapNotFound(err, companyID)
	}
	s.invalidate(ctx)

	return s.GetCompanyStatus(ctx, companyID)
}

// SetActive sets the operator controlled active flag. The flag is independent
// from the derived overdue state.
func (s *BillingService) SetActive(ctx context.Context, companyID uuid.UUID, active bool) (*domain.CompanyWithStatus, error) {
	if err := s.CompanyRepo.SetActive(ctx, companyID, active); err != nil {
		return nil, s.mapNotFound(err, companyID)
	}
	s.invalidate(ctx)

	s.logger.Info().
		Str("company_id", companyID.String()).
		Bool("is_active", active).
		Msg("company active flag changed")

	return s.GetCompanyStatus(ctx, companyID)
}

// RunReminders logs a reminder for each company that is due soon or overdue
// and returns the summary of the run
func (s *BillingService) RunReminders(ctx context.Context) (domain.StatusSummary, error) {
	statuses, now, err := s.ListCompanyStatuses(ctx)
	if err != nil {
		return domain.StatusSummary{}, err
	}

	for _, status := range statuses {
		state := subscription.Classify(status)
		if state != domain.BillingStateDueSoon && state != domain.BillingStateOverdue {
			continue
		}

		event := s.logger.Warn().
			Str("company_id", status.ID.String()).
			Str("company", status.Name).
			Str("state", string(state))
		if status.NextPaymentDueDate != nil {
			event = event.Str("due_date", utils.FormatDate(*status.NextPaymentDueDate))
		}
		if status.DaysUntilDue != nil {
			event = event.Int("days_until_due", *status.DaysUntilDue)
		}
		event.Msg("billing reminder")
	}

	summary := subscription.Summarize(statuses, now)
	s.logger.Info().
		Int("total", summary.Total).
		Int("due_soon", summary.DueSoon).
		Int("overdue", summary.Overdue).
		Int("no_payment", summary.NoPayment).
		Int("inactive", summary.Inactive).
		Msg("billing reminder run finished")

	return summary, nil
}

// loadCompanies reads the snapshot cache, falling back to the database.
// Cache failures are logged and never fail the read.
func (s *BillingService) loadCompanies(ctx context.Context) ([]domain.Company, error) {
	if s.cache != nil {
		companies, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(customError.WrapCacheError(err)).Msg("reading company snapshot")
		} else if ok {
			return companies, nil
		}
	}

	companies, err := s.CompanyRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, companies); err != nil {
			s.logger.Warn().Err(customError.WrapCacheError(err)).Msg("writing company snapshot")
		}
	}

	return companies, nil
}

func (s *BillingService) getCompany(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	company, err := s.CompanyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, s.mapNotFound(err, companyID)
	}
	return company, nil
}

func (s *BillingService) mapNotFound(err error, companyID uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapCompanyNotFound(companyID.String())
	}
	return customError.WrapDatabaseError(err)
}

func (s *BillingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(customError.WrapCacheError(err)).Msg("invalidating company snapshot")
	}
}
