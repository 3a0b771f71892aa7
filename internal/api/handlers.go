package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"

	"stayfront/internal/auth"
	"stayfront/internal/guard"
	"stayfront/internal/ratelimit"
)

func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.PrincipalMiddleware(a.Store))

		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(a.Limiter, ratelimit.ReadConfig, principalKeyFunc))
			r.Get("/tenants", a.ListTenants)
			r.Get("/tenants/{id}", a.GetTenant)
			r.Get("/me", a.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(a.Limiter, ratelimit.WriteConfig, principalKeyFunc))
			r.Post("/tenants", a.CreateTenant)
			r.Put("/tenants/{id}/domain", a.UpdateDomain)
			r.Post("/tenants/{id}/domain/verify", a.VerifyDomain)
			r.Put("/tenants/{id}/settings", a.UpdateSettings)
		})
	})

	r.Mount("/swagger", httpSwagger.WrapHandler)

	return r
}

// principalKeyFunc keys rate limiting by tenant and principal when
// authenticated, falling back to client IP.
func principalKeyFunc(r *http.Request) string {
	if p := auth.GetPrincipal(r); p != nil {
		return p.ScopedTenantID() + ":" + p.ID.String()
	}
	return ratelimit.IPKeyFunc(true)(r)
}

// writeError maps the typed error kinds to responses deterministically.
func (a *API) writeError(w http.ResponseWriter, err error) {
	var validation *guard.ValidationError
	var authz *guard.AuthorizationError
	var tenantGuard *guard.TenantGuardError
	var limited *ratelimit.LimitExceededError

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &authz):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.As(err, &tenantGuard):
		// Already logged as a security incident by the guard; never leak
		// partial data, fail the whole response.
		http.Error(w, "internal error", http.StatusInternalServerError)
	case errors.As(err, &limited):
		retryAfter := int(time.Until(limited.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// @Summary Current principal
// @Tags Auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} model.Principal
// @Router /me [get]
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(auth.GetPrincipal(r))
}

// @Summary List tenants (platform collaborators only)
// @Tags Tenants
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} model.TenantRecord
// @Router /tenants [get]
func (a *API) ListTenants(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r)
	if !principal.IsPlatformSuperAdmin {
		a.writeError(w, &guard.AuthorizationError{PrincipalID: principal.ID.String(), TenantID: "*"})
		return
	}

	tenants, err := a.Store.ListTenants(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(tenants)
}

// @Summary Get a tenant
// @Tags Tenants
// @Security ApiKeyAuth
// @Param id path string true "Tenant UUID"
// @Produce json
// @Success 200 {object} model.TenantRecord
// @Router /tenants/{id} [get]
func (a *API) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, &guard.ValidationError{Field: "id", Reason: "not a valid tenant id"})
		return
	}

	principal := auth.GetPrincipal(r)
	if err := a.Guard.AssertAccess(r.Context(), principal, id.String()); err != nil {
		a.writeError(w, err)
		return
	}

	filter := map[string]any{guard.PropertyIDField: id.String()}
	if err := guard.RequireTenantFilter(filter, id.String()); err != nil {
		a.writeError(w, err)
		return
	}

	tenant, err := a.Store.GetTenant(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if tenant == nil {
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	}

	// Defense-in-depth: confirm the row really belongs to the asserted
	// tenant before it leaves the process.
	if err := a.Guard.VerifyRows(r.Context(), id.String(), []guard.TenantScoped{tenant}); err != nil {
		a.writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(tenant)
}

type createTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// @Summary Create a tenant
// @Tags Tenants
// @Security ApiKeyAuth
// @Accept json
// @Param body body createTenantRequest true "Tenant"
// @Produce json
// @Success 201 {object} model.TenantRecord
// @Router /tenants [post]
func (a *API) CreateTenant(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r)
	if !principal.IsPlatformSuperAdmin {
		a.writeError(w, &guard.AuthorizationError{PrincipalID: principal.ID.String(), TenantID: "*"})
		return
	}

	var body createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, &guard.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	tenant, err := a.Admin.CreateTenant(r.Context(), body.Name, body.Slug)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.Logger.Info().Str("tenant_id", tenant.ID.String()).Msg("API: tenant created")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tenant)
}

type updateDomainRequest struct {
	Subdomain    *string `json:"subdomain"`
	CustomDomain *string `json:"custom_domain"`
}

// @Summary Update a tenant's domain configuration
// @Tags Tenants
// @Security ApiKeyAuth
// @Accept json
// @Param id path string true "Tenant UUID"
// @Param body body updateDomainRequest true "Domain config"
// @Produce json
// @Success 200 {object} model.TenantRecord
// @Router /tenants/{id}/domain [put]
func (a *API) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, &guard.ValidationError{Field: "id", Reason: "not a valid tenant id"})
		return
	}

	if err := a.Guard.AssertAccess(r.Context(), auth.GetPrincipal(r), id.String()); err != nil {
		a.writeError(w, err)
		return
	}

	var body updateDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, &guard.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	tenant, err := a.Admin.UpdateDomainConfig(r.Context(), id, body.Subdomain, body.CustomDomain)
	if err != nil {
		a.writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(tenant)
}

// @Summary Mark a pending custom domain as verified
// @Tags Tenants
// @Security ApiKeyAuth
// @Param id path string true "Tenant UUID"
// @Success 204
// @Router /tenants/{id}/domain/verify [post]
func (a *API) VerifyDomain(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, &guard.ValidationError{Field: "id", Reason: "not a valid tenant id"})
		return
	}

	if err := a.Guard.AssertAccess(r.Context(), auth.GetPrincipal(r), id.String()); err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.Admin.MarkDomainVerified(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Update tenant settings
// @Tags Tenants
// @Security ApiKeyAuth
// @Accept json
// @Param id path string true "Tenant UUID"
// @Param body body object true "Settings"
// @Success 204
// @Router /tenants/{id}/settings [put]
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, &guard.ValidationError{Field: "id", Reason: "not a valid tenant id"})
		return
	}

	if err := a.Guard.AssertAccess(r.Context(), auth.GetPrincipal(r), id.String()); err != nil {
		a.writeError(w, err)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeError(w, &guard.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	// The verified tenant id always wins over anything in the payload.
	payload = guard.StampTenant(payload, id.String())

	if err := a.Store.UpdateTenantSettings(r.Context(), id, payload); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
