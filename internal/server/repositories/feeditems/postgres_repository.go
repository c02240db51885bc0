package feeditems

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, uid string) ([]*models.FeedItem, error) {
	query :=
		`SELECT id, user_uid, title, message, occurred_at, read FROM feed_items
		 WHERE user_uid = $1
		 ORDER BY occurred_at DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.FeedItem
	for rows.Next() {
		item := &models.FeedItem{}
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Title, &item.Message, &item.OccurredAt, &item.Read); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.FeedItem) error {
	query :=
		`INSERT INTO feed_items (id, user_uid, title, message, occurred_at, read)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserUID, item.Title, item.Message, item.OccurredAt, item.Read)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, uid string, id string) error {
	query := `UPDATE feed_items SET read = TRUE WHERE user_uid = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, uid, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, uid string, id string) error {
	query := `DELETE FROM feed_items WHERE user_uid = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, uid, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, uid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feed_items WHERE user_uid = $1`, uid); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
