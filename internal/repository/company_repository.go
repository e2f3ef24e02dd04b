package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/tenant-billing/internal/domain"
)

const companyColumns = `
	id, name, payment_control,
	to_char(last_payment_date, 'YYYY-MM-DD') AS last_payment_date,
	is_active, created_at, updated_at`

type companyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	query := `
		INSERT INTO companies (id, name, payment_control, last_payment_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.PaymentControl,
		company.LastPaymentDate,
		company.IsActive,
		company.CreatedAt,
		company.UpdatedAt,
	)

	return err
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	query := `SELECT` + companyColumns + `
		FROM companies
		WHERE id = $1
	`

	var company domain.Company
	err := r.db.GetContext(ctx, &company, query, id)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepository) List(ctx context.Context) ([]domain.Company, error) {
	query := `SELECT` + companyColumns + `
		FROM companies
		ORDER BY created_at, id
	`

	companies := []domain.Company{}
	err := r.db.SelectContext(ctx, &companies, query)
	if err != nil {
		return nil, err
	}

	return companies, nil
}

func (r *companyRepository) UpdatePaymentControl(ctx context.Context, id uuid.UUID, control domain.PaymentControl) error {
	query := `
		UPDATE companies
		SET payment_control = $2, updated_at = $3
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, control, time.Now())
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *companyRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE companies
		SET is_active = $2, updated_at = $3
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, active, time.Now())
	if err != nil {
		return err
	}

	return requireAffected(res)
}

// requireAffected maps an update that matched no row to sql.ErrNoRows
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
