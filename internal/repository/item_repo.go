package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"memora-backend/internal/models"
)

type ItemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

func (r *ItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	i := &models.Item{}
	query := `SELECT id, type, prompt, payload_json, status, created_at
		FROM items WHERE id = $1 AND status = 'published'`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&i.ID, &i.Type, &i.Prompt, &i.PayloadJSON, &i.Status, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *ItemRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Item, error) {
	query := `SELECT id, type, prompt, payload_json, status, created_at
		FROM items WHERE id = ANY($1) AND status = 'published'`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		i := &models.Item{}
		err := rows.Scan(&i.ID, &i.Type, &i.Prompt, &i.PayloadJSON, &i.Status, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// ListPublished returns published items in creation order. An empty
// itemType matches every type.
func (r *ItemRepo) ListPublished(ctx context.Context, itemType string, limit, offset int) ([]*models.Item, error) {
	query := `SELECT id, type, prompt, payload_json, status, created_at
		FROM items WHERE status = 'published' AND ($1 = '' OR type = $1)
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, itemType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		i := &models.Item{}
		err := rows.Scan(&i.ID, &i.Type, &i.Prompt, &i.PayloadJSON, &i.Status, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *ItemRepo) CountPublished(ctx context.Context, itemType string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM items WHERE status = 'published' AND ($1 = '' OR type = $1)`
	err := r.pool.QueryRow(ctx, query, itemType).Scan(&n)
	return n, err
}
