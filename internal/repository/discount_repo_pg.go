package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meridianair/booking/internal/domain"
)

type DiscountRepository interface {
	GetByType(ctx context.Context, discountType string) (*domain.Discount, error)
	List(ctx context.Context) ([]domain.Discount, error)
}

type PGDiscountRepository struct {
	db DB
}

func NewDiscountRepository(db DB) *PGDiscountRepository {
	return &PGDiscountRepository{db: db}
}

// GetByType failing for a type the resolver produced means the discount
// table is misconfigured, not that the request was bad.
func (r *PGDiscountRepository) GetByType(ctx context.Context, discountType string) (*domain.Discount, error) {
	var d domain.Discount
	err := r.db.QueryRow(ctx, `SELECT discount_type, discount_rate FROM discounts WHERE discount_type=$1`, discountType).
		Scan(&d.Type, &d.Rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: discount with type %s", domain.ErrNotFound, discountType)
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGDiscountRepository) List(ctx context.Context) ([]domain.Discount, error) {
	rows, err := r.db.Query(ctx, `SELECT discount_type, discount_rate FROM discounts ORDER BY discount_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discounts := make([]domain.Discount, 0)
	for rows.Next() {
		var d domain.Discount
		if err := rows.Scan(&d.Type, &d.Rate); err != nil {
			return nil, err
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}

var _ DiscountRepository = (*PGDiscountRepository)(nil)
