package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/tenant-billing/internal/cache"
	"github.com/segyhp/tenant-billing/internal/domain"
	"github.com/segyhp/tenant-billing/internal/mocks"
	customError "github.com/segyhp/tenant-billing/pkg/errors"
)

var fixedNow = time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	companies *mocks.MockCompanyRepository
	payments  *mocks.MockPaymentRepository
	cache     *mocks.MockSnapshotCache
	service   *BillingService
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		companies: &mocks.MockCompanyRepository{},
		payments:  &mocks.MockPaymentRepository{},
		cache:     &mocks.MockSnapshotCache{},
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	f.service = NewBillingService(f.companies, f.payments, f.cache, time.UTC, opts...)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.companies.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func strPtr(s string) *string {
	return &s
}

func company(name string, control domain.PaymentControl, lastPayment *string) domain.Company {
	created := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	return domain.Company{
		ID:              uuid.New(),
		Name:            name,
		PaymentControl:  control,
		LastPaymentDate: lastPayment,
		IsActive:        true,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var be *customError.BusinessError
	require.True(t, errors.As(err, &be), "expected business error, got %v", err)
	assert.Equal(t, code, be.Code)
}

func TestListCompanyStatuses_CacheMiss(t *testing.T) {
	f := newFixture()
	companies := []domain.Company{
		company("Due today", domain.PaymentControlMonthly, strPtr("2024-01-15")),
		company("Overdue", domain.PaymentControlMonthly, strPtr("2024-01-14")),
		company("Lifetime", domain.PaymentControlPermanent, strPtr("2020-01-01")),
	}

	f.cache.On("Get", mock.Anything).Return(nil, false, nil).Once()
	f.companies.On("List", mock.Anything).Return(companies, nil).Once()
	f.cache.On("Set", mock.Anything, companies).Return(nil).Once()

	statuses, now, err := f.service.ListCompanyStatuses(context.Background())

	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(now))
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].IsPaymentDueSoon)
	assert.False(t, statuses[0].IsOverdue)
	assert.True(t, statuses[1].IsOverdue)
	assert.False(t, statuses[2].IsOverdue)
	assert.Nil(t, statuses[2].NextPaymentDueDate)
	f.assertExpectations(t)
}

func TestListCompanyStatuses_CacheHit(t *testing.T) {
	f := newFixture()
	companies := []domain.Company{company("Cached", domain.PaymentControlAnnual, nil)}

	f.cache.On("Get", mock.Anything).Return(companies, true, nil).Once()

	statuses, _, err := f.service.ListCompanyStatuses(context.Background())

	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].HasNoPaymentRegistered)
	f.companies.AssertNotCalled(t, "List", mock.Anything)
	f.assertExpectations(t)
}

func TestListCompanyStatuses_CacheFailureFallsBackToDatabase(t *testing.T) {
	f := newFixture()
	companies := []domain.Company{company("Acme", domain.PaymentControlMonthly, strPtr("2024-02-01"))}

	f.cache.On("Get", mock.Anything).Return(nil, false, errors.New("connection refused")).Once()
	f.companies.On("List", mock.Anything).Return(companies, nil).Once()
	f.cache.On("Set", mock.Anything, companies).Return(errors.New("connection refused")).Once()

	statuses, _, err := f.service.ListCompanyStatuses(context.Background())

	require.NoError(t, err)
	assert.Len(t, statuses, 1)
	f.assertExpectations(t)
}

func TestListCompanyStatuses_DatabaseError(t *testing.T) {
	f := newFixture()

	f.cache.On("Get", mock.Anything).Return(nil, false, nil).Once()
	f.companies.On("List", mock.Anything).Return(nil, errors.New("timeout")).Once()

	_, _, err := f.service.ListCompanyStatuses(context.Background())

	assertCode(t, err, customError.ErrCodeDatabaseError)
	f.assertExpectations(t)
}

func TestListCompanyStatuses_RecomputesFromCachedSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := fixedNow
	companies := &mocks.MockCompanyRepository{}
	svc := NewBillingService(companies, &mocks.MockPaymentRepository{},
		cache.NewCompanySnapshot(client, time.Hour), time.UTC,
		WithClock(func() time.Time { return now }))

	rows := []domain.Company{company("Acme", domain.PaymentControlMonthly, strPtr("2024-01-15"))}
	companies.On("List", mock.Anything).Return(rows, nil).Once()

	first, _, err := svc.ListCompanyStatuses(context.Background())
	require.NoError(t, err)
	assert.False(t, first[0].IsOverdue)

	// the snapshot is served from redis but the status follows the clock
	now = fixedNow.Add(24 * time.Hour)
	second, _, err := svc.ListCompanyStatuses(context.Background())
	require.NoError(t, err)
	assert.True(t, second[0].IsOverdue)

	companies.AssertExpectations(t)
}

func TestGetSummary(t *testing.T) {
	f := newFixture()
	inactive := company("Paused", domain.PaymentControlMonthly, strPtr("2024-02-01"))
	inactive.IsActive = false
	companies := []domain.Company{
		company("Active", domain.PaymentControlMonthly, strPtr("2024-02-01")),
		company("Due soon", domain.PaymentControlAnnual, strPtr("2023-02-18")),
		company("Overdue", domain.PaymentControlMonthly, strPtr("2023-12-01")),
		company("Never paid", domain.PaymentControlPermanent, nil),
		inactive,
	}

	f.cache.On("Get", mock.Anything).Return(companies, true, nil).Once()

	summary, err := f.service.GetSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSummary{
		Total:     5,
		Active:    1,
		DueSoon:   1,
		Overdue:   1,
		NoPayment: 1,
		Inactive:  1,
		AsOf:      fixedNow,
	}, summary)
	f.assertExpectations(t)
}

func TestGetBanner(t *testing.T) {
	f := newFixture()
	c := company("Acme", domain.PaymentControlAnnual, strPtr("2023-02-17"))

	f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil).Once()

	banner, err := f.service.GetBanner(context.Background(), c.ID)

	require.NoError(t, err)
	assert.True(t, banner.Show)
	assert.Equal(t, domain.BillingStateDueSoon, banner.State)
	assert.Equal(t, domain.BannerSeverityInfo, banner.Severity)
	require.NotNil(t, banner.DaysUntilDue)
	assert.Equal(t, 2, *banner.DaysUntilDue)
	f.assertExpectations(t)
}

func TestGetBanner_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.companies.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows).Once()

	_, err := f.service.GetBanner(context.Background(), id)

	assertCode(t, err, customError.ErrCodeCompanyNotFound)
	assert.True(t, errors.Is(err, customError.ErrCompanyNotFound))
	f.assertExpectations(t)
}

func TestCreateCompany(t *testing.T) {
	f := newFixture()
	inactive := false

	f.companies.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Company) bool {
		return c.Name == "Acme" &&
			c.PaymentControl == domain.PaymentControlMonthly &&
			!c.IsActive &&
			c.LastPaymentDate == nil &&
			c.CreatedAt.Equal(fixedNow)
	})).Return(nil).Once()
	f.cache.On("Invalidate", mock.Anything).Return(nil).Once()

	status, err := f.service.CreateCompany(context.Background(), &domain.CreateCompanyRequest{
		Name:           "Acme",
		PaymentControl: domain.PaymentControlMonthly,
		IsActive:       &inactive,
	})

	require.NoError(t, err)
	assert.True(t, status.HasNoPaymentRegistered)
	assert.False(t, status.IsOverdue)
	require.NotNil(t, status.NextPaymentDueDate)
	assert.True(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Equal(*status.NextPaymentDueDate))
	f.assertExpectations(t)
}

func TestCreateCompany_InvalidPaymentControl(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateCompany(context.Background(), &domain.CreateCompanyRequest{
		Name:           "Acme",
		PaymentControl: "quarterly",
	})

	assertCode(t, err, customError.ErrCodeInvalidPaymentControl)
	f.companies.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterPayment_Success(t *testing.T) {
	f := newFixture()
	before := company("Acme", domain.PaymentControlMonthly, strPtr("2024-01-01"))
	after := before
	after.LastPaymentDate = strPtr("2024-02-14")

	f.companies.On("GetByID", mock.Anything, before.ID).Return(&before, nil).Once()
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.CompanyID == before.ID &&
			p.PaymentDate == "2024-02-14" &&
			p.Amount.Equal(decimal.RequireFromString("99.90")) &&
			p.ID != uuid.Nil
	})).Return(nil).Once()
	f.cache.On("Invalidate", mock.Anything).Return(nil).Once()
	f.companies.On("GetByID", mock.Anything, before.ID).Return(&after, nil).Once()

	res, err := f.service.RegisterPayment(context.Background(), before.ID, &domain.RegisterPaymentRequest{
		Amount:      decimal.RequireFromString("99.899"),
		PaymentDate: "2024-02-14",
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-02-14", res.Payment.PaymentDate)
	assert.False(t, res.Company.IsOverdue)
	assert.False(t, res.Company.HasNoPaymentRegistered)
	require.NotNil(t, res.Company.NextPaymentDueDate)
	assert.True(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC).Equal(*res.Company.NextPaymentDueDate))
	f.assertExpectations(t)
}

func TestRegisterPayment_Validation(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		request domain.RegisterPaymentRequest
		code    string
	}{
		{
			name:    "zero amount",
			request: domain.RegisterPaymentRequest{Amount: decimal.Zero, PaymentDate: "2024-02-14"},
			code:    customError.ErrCodeInvalidPaymentAmount,
		},
		{
			name:    "negative amount",
			request: domain.RegisterPaymentRequest{Amount: decimal.NewFromInt(-5), PaymentDate: "2024-02-14"},
			code:    customError.ErrCodeInvalidPaymentAmount,
		},
		{
			name:    "malformed date",
			request: domain.RegisterPaymentRequest{Amount: decimal.NewFromInt(5), PaymentDate: "14/02/2024"},
			code:    customError.ErrCodeInvalidPaymentDate,
		},
		{
			name:    "date after today",
			request: domain.RegisterPaymentRequest{Amount: decimal.NewFromInt(5), PaymentDate: "2024-02-16"},
			code:    customError.ErrCodePaymentDateInFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service.RegisterPayment(context.Background(), id, &tt.request)
			assertCode(t, err, tt.code)
			f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterPayment_PaymentToday(t *testing.T) {
	f := newFixture()
	c := company("Acme", domain.PaymentControlAnnual, nil)

	f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.cache.On("Invalidate", mock.Anything).Return(nil).Once()

	_, err := f.service.RegisterPayment(context.Background(), c.ID, &domain.RegisterPaymentRequest{
		Amount:      decimal.NewFromInt(1200),
		PaymentDate: "2024-02-15",
	})

	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRegisterPayment_UnknownCompany(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.companies.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows).Once()

	_, err := f.service.RegisterPayment(context.Background(), id, &domain.RegisterPaymentRequest{
		Amount:      decimal.NewFromInt(10),
		PaymentDate: "2024-02-01",
	})

	assertCode(t, err, customError.ErrCodeCompanyNotFound)
	f.assertExpectations(t)
}

func TestUpdatePaymentControl(t *testing.T) {
	f := newFixture()
	c := company("Acme", domain.PaymentControlPermanent, strPtr("2023-01-01"))

	f.companies.On("UpdatePaymentControl", mock.Anything, c.ID, domain.PaymentControlMonthly).Return(nil).Once()
	f.cache.On("Invalidate", mock.Anything).Return(nil).Once()
	updated := c
	updated.PaymentControl = domain.PaymentControlMonthly
	f.companies.On("GetByID", mock.Anything, c.ID).Return(&updated, nil).Once()

	status, err := f.service.UpdatePaymentControl(context.Background(), c.ID, domain.PaymentControlMonthly)

	require.NoError(t, err)
	assert.True(t, status.IsOverdue)
	f.assertExpectations(t)
}

func TestUpdatePaymentControl_Invalid(t *testing.T) {
	f := newFixture()

	_, err := f.service.UpdatePaymentControl(context.Background(), uuid.New(), "weekly")

	assertCode(t, err, customError.ErrCodeInvalidPaymentControl)
}

func TestSetActive(t *testing.T) {
	f := newFixture()
	c := company("Acme", domain.PaymentControlMonthly, strPtr("2024-02-10"))
	c.IsActive = false

	f.companies.On("SetActive", mock.Anything, c.ID, false).Return(nil).Once()
	f.cache.On("Invalidate", mock.Anything).Return(errors.New("redis down")).Once()
	f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil).Once()

	status, err := f.service.SetActive(context.Background(), c.ID, false)

	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.False(t, status.IsOverdue)
	f.assertExpectations(t)
}

func TestSetActive_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.companies.On("SetActive", mock.Anything, id, true).Return(sql.ErrNoRows).Once()

	_, err := f.service.SetActive(context.Background(), id, true)

	assertCode(t, err, customError.ErrCodeCompanyNotFound)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestListPayments(t *testing.T) {
	f := newFixture()
	c := company("Acme", domain.PaymentControlMonthly, nil)

	f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil).Once()
	f.payments.On("GetByCompanyID", mock.Anything, c.ID).Return(nil, nil).Once()

	payments, err := f.service.ListPayments(context.Background(), c.ID)

	require.NoError(t, err)
	assert.NotNil(t, payments)
	assert.Empty(t, payments)
	f.assertExpectations(t)
}

func TestGetLatestPayment(t *testing.T) {
	f := newFixture()
	c := company("Acme", domain.PaymentControlMonthly, strPtr("2024-02-01"))
	latest := &domain.Payment{ID: uuid.New(), CompanyID: c.ID, Amount: decimal.NewFromInt(99), PaymentDate: "2024-02-01"}

	f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil).Once()
	f.payments.On("GetLatestPayment", mock.Anything, c.ID).Return(latest, nil).Once()

	payment, err := f.service.GetLatestPayment(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, latest, payment)
	f.assertExpectations(t)
}

func TestGetLatestPayment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture, c domain.Company)
		errCode string
	}{
		{
			name: "unknown company",
			setup: func(f *fixture, c domain.Company) {
				f.companies.On("GetByID", mock.Anything, c.ID).Return(nil, sql.ErrNoRows).Once()
			},
			errCode: customError.ErrCodeCompanyNotFound,
		},
		{
			name: "never paid",
			setup: func(f *fixture, c domain.Company) {
				f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil).Once()
				f.payments.On("GetLatestPayment", mock.Anything, c.ID).Return(nil, sql.ErrNoRows).Once()
			},
			errCode: customError.ErrCodeNoPaymentRegistered,
		},
		{
			name: "database failure",
			setup: func(f *fixture, c domain.Company) {
				f.companies.On("GetByID", mock.Anything, c.ID).Return(&c, nil).Once()
				f.payments.On("GetLatestPayment", mock.Anything, c.ID).Return(nil, errors.New("connection reset")).Once()
			},
			errCode: customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			c := company("Acme", domain.PaymentControlMonthly, nil)
			tt.setup(f, c)

			payment, err := f.service.GetLatestPayment(context.Background(), c.ID)

			assert.Nil(t, payment)
			assertCode(t, err, tt.errCode)
			f.payments.AssertNotCalled(t, "GetByCompanyID", mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestRunReminders(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(WithLogger(zerolog.New(&buf)))

	companies := []domain.Company{
		company("Active", domain.PaymentControlMonthly, strPtr("2024-02-01")),
		company("Due soon", domain.PaymentControlMonthly, strPtr("2024-01-17")),
		company("Overdue", domain.PaymentControlAnnual, strPtr("2023-01-01")),
		company("Never paid", domain.PaymentControlPermanent, nil),
	}
	f.cache.On("Get", mock.Anything).Return(companies, true, nil).Once()

	summary, err := f.service.RunReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.DueSoon)
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, 1, summary.NoPayment)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"message":"billing reminder"`))
	assert.Contains(t, out, `"company":"Due soon"`)
	assert.Contains(t, out, `"days_until_due":2`)
	assert.Contains(t, out, `"company":"Overdue"`)
	assert.NotContains(t, out, `"company":"Never paid"`)
	assert.Contains(t, out, "billing reminder run finished")
	f.assertExpectations(t)
}
