package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-offline-keeper/internal/utils"
)

const companyIDHeader = "X-Company-ID"

// withCompany resolves the company a request is scoped to: the company_id
// query parameter, then the X-Company-ID header, then the configured default.
func (h *Handler) withCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := r.URL.Query().Get("company_id")
		if companyID == "" {
			companyID = r.Header.Get(companyIDHeader)
		}
		if companyID == "" {
			companyID = h.defaultCompanyID
		}

		ctx := context.WithValue(r.Context(), utils.CompanyIDCtxKey, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func companyFromRequest(r *http.Request) string {
	companyID, _ := utils.GetCompanyIDFromContext(r.Context())
	return companyID
}
