package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/tenant-billing/internal/domain"
	"github.com/segyhp/tenant-billing/internal/subscription"
	customError "github.com/segyhp/tenant-billing/pkg/errors"
	"github.com/segyhp/tenant-billing/pkg/response"
)

// BillingService is the behaviour the billing handler needs
type BillingService interface {
	CreateCompany(ctx context.Context, request *domain.CreateCompanyRequest) (*domain.CompanyWithStatus, error)
	ListCompanyStatuses(ctx context.Context) ([]domain.CompanyWithStatus, time.Time, error)
	GetCompanyStatus(ctx context.Context, companyID uuid.UUID) (*domain.CompanyWithStatus, error)
	GetSummary(ctx context.Context) (domain.StatusSummary, error)
	GetBanner(ctx context.Context, companyID uuid.UUID) (domain.Banner, error)
	RegisterPayment(ctx context.Context, companyID uuid.UUID, request *domain.RegisterPaymentRequest) (*domain.RegisterPaymentResponse, error)
	ListPayments(ctx context.Context, companyID uuid.UUID) ([]*domain.Payment, error)
	GetLatestPayment(ctx context.Context, companyID uuid.UUID) (*domain.Payment, error)
	UpdatePaymentControl(ctx context.Context, companyID uuid.UUID, control domain.PaymentControl) (*domain.CompanyWithStatus, error)
	SetActive(ctx context.Context, companyID uuid.UUID, active bool) (*domain.CompanyWithStatus, error)
}

type BillingHandler struct {
	service   BillingService
	validator *validator.Validate
}

func NewBillingHandler(service BillingService) *BillingHandler {
	return &BillingHandler{
		service:   service,
		validator: newValidator(),
	}
}

type companyListResponse struct {
	AsOf      time.Time                      `json:"asOf"`
	Companies []domain.CompanyStatusResponse `json:"companies"`
}

// ListCompanies returns every company with its derived status and state
func (h *BillingHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	statuses, asOf, err := h.service.ListCompanyStatuses(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	items := make([]domain.CompanyStatusResponse, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, domain.CompanyStatusResponse{
			State:  subscription.Classify(status),
			Status: status,
		})
	}

	response.Success(w, companyListResponse{AsOf: asOf, Companies: items})
}

// GetCompany returns one company. Non super admins may only read their own.
func (h *BillingHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	if !IsSuperAdmin(r.Context()) {
		own, found := CompanyIDFromContext(r.Context())
		if !found || own != companyID {
			response.Forbidden(w, "Insufficient permissions")
			return
		}
	}

	status, err := h.service.GetCompanyStatus(r.Context(), companyID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.CompanyStatusResponse{
		State:  subscription.Classify(*status),
		Status: *status,
	})
}

func (h *BillingHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCompanyRequest
	if !h.decode(w, r, &request) {
		return
	}

	status, err := h.service.CreateCompany(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, status)
}

// Summary returns the per-state counts for the dashboard
func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, summary)
}

// Banner returns the billing banner of the caller's company.
// Super admins never get a banner.
func (h *BillingHandler) Banner(w http.ResponseWriter, r *http.Request) {
	if IsSuperAdmin(r.Context()) {
		response.Success(w, domain.Banner{Show: false})
		return
	}

	companyID, ok := CompanyIDFromContext(r.Context())
	if !ok {
		response.FromError(w, customError.WrapCompanyScopeMissing())
		return
	}

	banner, err := h.service.GetBanner(r.Context(), companyID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, banner)
}

func (h *BillingHandler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	var request domain.RegisterPaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	res, err := h.service.RegisterPayment(r.Context(), companyID, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, res)
}

func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), companyID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *BillingHandler) LatestPayment(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	payment, err := h.service.GetLatestPayment(r.Context(), companyID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *BillingHandler) UpdatePaymentControl(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	var request domain.UpdatePaymentControlRequest
	if !h.decode(w, r, &request) {
		return
	}

	status, err := h.service.UpdatePaymentControl(r.Context(), companyID, request.PaymentControl)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, status)
}

func (h *BillingHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	var request domain.SetActiveRequest
	if !h.decode(w, r, &request) {
		return
	}

	status, err := h.service.SetActive(r.Context(), companyID, *request.IsActive)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, status)
}

func (h *BillingHandler) companyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["companyId"])
	if err != nil {
		response.BadRequest(w, "Invalid company ID", err)
		return uuid.Nil, false
	}
	return id, true
}

// decode reads a JSON body into dst and validates it
func (h *BillingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}

	return true
}
