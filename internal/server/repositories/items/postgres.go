package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/libriahq/libria/internal/common"
	"github.com/libriahq/libria/internal/dbx"
	"github.com/libriahq/libria/internal/server/models"
)

// PostgresRepository implements the item directory over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = `id, owner_id, name, type, mime_type, visibility, storage_key,
	thumbnail_key, file_size, preview_text, original_filename,
	created_at, updated_at, deleted_at`

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO library_items
			(id, owner_id, name, type, mime_type, visibility, storage_key,
			 thumbnail_key, file_size, preview_text, original_filename)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.OwnerID, item.Name, item.Type, item.MimeType, item.Visibility,
		item.StorageKey, item.ThumbnailKey, item.FileSize, item.PreviewText, item.OriginalFilename,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM library_items WHERE id=$1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM library_items
		WHERE owner_id=$1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SetThumbnailKey(ctx context.Context, id, thumbnailKey string) error {
	query := `UPDATE library_items SET thumbnail_key=$2, updated_at=now() WHERE id=$1`
	return r.execExpectingOneRow(ctx, query, id, thumbnailKey)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE library_items SET deleted_at=now(), updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`
	return r.execExpectingOneRow(ctx, query, id)
}

func (r *PostgresRepository) execExpectingOneRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	var deletedAt sql.NullTime

	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Type, &item.MimeType,
		&item.Visibility, &item.StorageKey, &item.ThumbnailKey, &item.FileSize,
		&item.PreviewText, &item.OriginalFilename,
		&item.CreatedAt, &item.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		item.DeletedAt = &deletedAt.Time
	}
	return &item, nil
}
