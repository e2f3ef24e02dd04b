package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/segyhp/tenant-billing/pkg/response"
)

// companyPath only matches UUIDs so fixed segments like /companies/summary
// are not captured as an ID
const companyPath = "/companies/{companyId:[0-9a-fA-F-]{36}}"

// NewRouter wires the health and billing routes
func NewRouter(billing *BillingHandler, health *HealthHandler, jwtSecret string, logger zerolog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	// Health check
	if health != nil {
		router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(Authenticate(jwtSecret))

	api.HandleFunc("/billing/banner", billing.Banner).Methods(http.MethodGet)
	api.HandleFunc(companyPath, billing.GetCompany).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(RequireRole(RoleSuperAdmin))

	admin.HandleFunc("/companies", billing.ListCompanies).Methods(http.MethodGet)
	admin.HandleFunc("/companies", billing.CreateCompany).Methods(http.MethodPost)
	admin.HandleFunc("/companies/summary", billing.Summary).Methods(http.MethodGet)
	admin.HandleFunc(companyPath+"/payments", billing.RegisterPayment).Methods(http.MethodPost)
	admin.HandleFunc(companyPath+"/payments", billing.ListPayments).Methods(http.MethodGet)
	admin.HandleFunc(companyPath+"/payments/latest", billing.LatestPayment).Methods(http.MethodGet)
	admin.HandleFunc(companyPath+"/payment-control", billing.UpdatePaymentControl).Methods(http.MethodPatch)
	admin.HandleFunc(companyPath+"/active", billing.SetActive).Methods(http.MethodPatch)

	// preflight requests match no route, so CORS wraps the router
	return response.CORSMiddleware(router)
}
