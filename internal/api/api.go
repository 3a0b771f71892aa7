package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stayfront/internal/auth"
	"stayfront/internal/guard"
	"stayfront/internal/manager"
	"stayfront/internal/model"
	"stayfront/internal/ratelimit"
)

// TenantStore is the read side of the directories the API serves from.
// It doubles as the principal directory for the auth middleware.
type TenantStore interface {
	auth.PrincipalDirectory
	ListTenants(ctx context.Context) ([]model.TenantRecord, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*model.TenantRecord, error)
	UpdateTenantSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error
}

type API struct {
	Admin   *manager.TenantAdmin
	Store   TenantStore
	Guard   *guard.AccessGuard
	Limiter *ratelimit.Limiter
	Logger  zerolog.Logger
}

func NewAPI(admin *manager.TenantAdmin, store TenantStore, g *guard.AccessGuard, limiter *ratelimit.Limiter, logger zerolog.Logger) *API {
	return &API{
		Admin:   admin,
		Store:   store,
		Guard:   g,
		Limiter: limiter,
		Logger:  logger,
	}
}
