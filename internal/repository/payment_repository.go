package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/tenant-billing/internal/domain"
)

const paymentColumns = `
	id, company_id, amount,
	to_char(payment_date, 'YYYY-MM-DD') AS payment_date,
	notes, created_at`

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts the payment and moves the company's last_payment_date
// forward in the same transaction. A backdated payment never moves it back.
func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	insert := `
		INSERT INTO payments (id, company_id, amount, payment_date, notes, created_at)
		VALUES ($1, $2, $3, $4::date, $5, $6)
	`
	bump := `
		UPDATE companies
		SET last_payment_date = GREATEST(last_payment_date, $2::date), updated_at = $3
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insert,
		payment.ID,
		payment.CompanyID,
		payment.Amount,
		payment.PaymentDate,
		payment.Notes,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, bump, payment.CompanyID, payment.PaymentDate, time.Now())
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE company_id = $1
		ORDER BY payment_date DESC, created_at DESC
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, companyID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetLatestPayment(ctx context.Context, companyID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE company_id = $1
		ORDER BY payment_date DESC, created_at DESC
		LIMIT 1
	`

	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, companyID)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}
