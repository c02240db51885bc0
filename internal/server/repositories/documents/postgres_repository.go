package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/dbx"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, path string) (*models.Document, error) {
	query :=
		`SELECT path, owner_uid, access_uids, fields, version, updated_at FROM documents
		 WHERE path = $1
		 `

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) ListByPrefix(ctx context.Context, prefix string) ([]*models.Document, error) {
	query :=
		`SELECT path, owner_uid, access_uids, fields, version, updated_at FROM documents
		 WHERE path LIKE $1 || '%'
		 ORDER BY path
		 `

	rows, err := r.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return docs, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, doc *models.Document) (int64, error) {
	access, err := json.Marshal(doc.AccessUIDs)
	if err != nil {
		return 0, fmt.Errorf("marshalling access list: %w", err)
	}
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return 0, fmt.Errorf("marshalling fields: %w", err)
	}

	query :=
		`INSERT INTO documents (path, owner_uid, access_uids, fields)
         VALUES ($1, $2, $3, $4)
		 ON CONFLICT (path) DO UPDATE
		 SET fields = EXCLUDED.fields,
		     access_uids = EXCLUDED.access_uids,
		     version = documents.version + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE $5 = 0 OR documents.version = $5
		 RETURNING version
		 `

	var version int64
	err = r.db.QueryRowContext(ctx, query,
		doc.Path, doc.OwnerUID, access, fields, doc.Version).Scan(&version)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrVersionConflict
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return version, nil
}

func (r *PostgresRepository) UpdateAccess(ctx context.Context, prefix string, accessUIDs []string) error {
	access, err := json.Marshal(accessUIDs)
	if err != nil {
		return fmt.Errorf("marshalling access list: %w", err)
	}

	query :=
		`UPDATE documents
		 SET access_uids = $2, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE path LIKE $1 || '%'
		 `

	if _, err := r.db.ExecContext(ctx, query, prefix, access); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, path string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, path); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE path LIKE $1 || '%'`, prefix); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, uid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE owner_uid = $1`, uid); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	doc := &models.Document{}
	var access, fields []byte

	if err := row.Scan(&doc.Path, &doc.OwnerUID, &access, &fields, &doc.Version, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(access, &doc.AccessUIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling access list: %w", err)
	}
	if err := json.Unmarshal(fields, &doc.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}

	return doc, nil
}
