package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"litshop/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.SelectContext(ctx, &out, `
  SELECT
    id,
    name,
    COALESCE(created_at,'') AS created_at
  FROM categories
  ORDER BY name
`)
	return out, err
}
