// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"stayfront/internal/model"
)

type Storage struct {
	DB *sql.DB
}

func NewStorage(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Storage{DB: db}, nil
}

const tenantColumns = `id, name, slug, subdomain, custom_domain, domain_status,
	domain_verification_token, frontend_enabled, settings, created_at, updated_at`

func scanTenant(row *sql.Row) (*model.TenantRecord, error) {
	var t model.TenantRecord
	var subdomain, customDomain sql.NullString
	var settings []byte
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &subdomain, &customDomain,
		&t.DomainStatus, &t.DomainVerificationToken, &t.FrontendEnabled,
		&settings, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	if subdomain.Valid {
		t.Subdomain = &subdomain.String
	}
	if customDomain.Valid {
		t.CustomDomain = &customDomain.String
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &t.Settings); err != nil {
			return nil, fmt.Errorf("decode tenant settings: %w", err)
		}
	}
	return &t, nil
}

// TenantByCustomDomain looks up an enabled tenant by exact custom domain.
// A miss is a nil record, not an error.
func (s *Storage) TenantByCustomDomain(ctx context.Context, domain string) (*model.TenantRecord, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE custom_domain = $1 AND frontend_enabled = true
	`, domain)
	return scanTenant(row)
}

// TenantBySubdomain looks up an enabled tenant by subdomain label.
func (s *Storage) TenantBySubdomain(ctx context.Context, subdomain string) (*model.TenantRecord, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE subdomain = $1 AND frontend_enabled = true
	`, subdomain)
	return scanTenant(row)
}

func (s *Storage) GetTenant(ctx context.Context, id uuid.UUID) (*model.TenantRecord, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE id = $1
	`, id)
	return scanTenant(row)
}

func (s *Storage) CreateTenant(ctx context.Context, t *model.TenantRecord) error {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("encode tenant settings: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO tenants (id, name, slug, subdomain, custom_domain, domain_status,
			domain_verification_token, frontend_enabled, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`, t.ID, t.Name, t.Slug, t.Subdomain, t.CustomDomain, t.DomainStatus,
		t.DomainVerificationToken, t.FrontendEnabled, settings)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]model.TenantRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.TenantRecord
	for rows.Next() {
		var t model.TenantRecord
		var subdomain, customDomain sql.NullString
		var settings []byte
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &subdomain, &customDomain,
			&t.DomainStatus, &t.DomainVerificationToken, &t.FrontendEnabled,
			&settings, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		if subdomain.Valid {
			t.Subdomain = &subdomain.String
		}
		if customDomain.Valid {
			t.CustomDomain = &customDomain.String
		}
		if len(settings) > 0 {
			if err := json.Unmarshal(settings, &t.Settings); err != nil {
				return nil, fmt.Errorf("decode tenant settings: %w", err)
			}
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// UpdateDomainConfig replaces a tenant's domain fields and resets its
// verification state. The caller owns cache invalidation.
func (s *Storage) UpdateDomainConfig(ctx context.Context, id uuid.UUID, subdomain, customDomain *string, status model.DomainStatus, token string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tenants
		SET subdomain = $1,
		    custom_domain = $2,
		    domain_status = $3,
		    domain_verification_token = $4,
		    updated_at = now()
		WHERE id = $5
	`, subdomain, customDomain, status, token, id)
	if err != nil {
		return fmt.Errorf("update domain config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tenant not found: %s", id)
	}
	return nil
}

func (s *Storage) MarkDomainVerified(ctx context.Context, id uuid.UUID) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tenants
		SET domain_status = $1, updated_at = now()
		WHERE id = $2
	`, model.DomainVerified, id)
	if err != nil {
		return fmt.Errorf("mark domain verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tenant not found: %s", id)
	}
	return nil
}

// UpdateTenantSettings replaces the free-form settings map. The payload
// is expected to have passed through guard.StampTenant already.
func (s *Storage) UpdateTenantSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode tenant settings: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE tenants
		SET settings = $1, updated_at = now()
		WHERE id = $2
	`, data, id)
	if err != nil {
		return fmt.Errorf("update tenant settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tenant not found: %s", id)
	}
	return nil
}

// FindPrincipalRole resolves an authenticated email to its role: a
// platform collaborator record wins over a tenant-scoped admin record.
// An unknown email is a nil principal, not an error.
func (s *Storage) FindPrincipalRole(ctx context.Context, email string) (*model.Principal, error) {
	var p model.Principal
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email FROM platform_collaborators WHERE email = $1
	`, email).Scan(&p.ID, &p.Email)
	if err == nil {
		p.IsPlatformSuperAdmin = true
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("query platform collaborator: %w", err)
	}

	var tenantID uuid.UUID
	err = s.DB.QueryRowContext(ctx, `
		SELECT id, email, tenant_id FROM tenant_admins WHERE email = $1
	`, email).Scan(&p.ID, &p.Email, &tenantID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant admin: %w", err)
	}
	p.TenantID = &tenantID
	return &p, nil
}
