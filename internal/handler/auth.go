package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/segyhp/tenant-billing/pkg/response"
)

// RoleSuperAdmin may administer every tenant
const RoleSuperAdmin = "super_admin"

type ctxKey string

const (
	ctxKeyRole      ctxKey = "role"
	ctxKeyCompanyID ctxKey = "companyID"
)

// Authenticate validates the bearer token and stores the caller's role and
// company in the request context. Tokens are issued elsewhere.
func Authenticate(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				response.Unauthorized(w, "Bearer token required")
				return
			}

			token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			}))
			if err != nil || !token.Valid {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				response.Unauthorized(w, "Invalid token claims")
				return
			}

			role, _ := claims["role"].(string)
			if role == "" {
				response.Unauthorized(w, "Token has no role")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyRole, role)
			if raw, _ := claims["company_id"].(string); raw != "" {
				if id, err := uuid.Parse(raw); err == nil {
					ctx = context.WithValue(ctx, ctxKeyCompanyID, id)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role differs from role
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RoleFromContext returns the authenticated role, empty if none
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ctxKeyRole).(string)
	return role
}

// CompanyIDFromContext returns the company the caller belongs to
func CompanyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyCompanyID).(uuid.UUID)
	return id, ok
}

// IsSuperAdmin reports whether the caller is a super admin
func IsSuperAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == RoleSuperAdmin
}
