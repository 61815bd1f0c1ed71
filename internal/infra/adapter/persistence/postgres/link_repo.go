package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/observability/metrics"
	"linkdeck/internal/repository"
)

type LinkRepo struct {
	db *sql.DB
}

func NewLinkRepo(db *sql.DB) repository.LinkRepository {
	return &LinkRepo{db: db}
}

func (repo *LinkRepo) ListByProfile(ctx context.Context, profileID int64) ([]*entity.Link, error) {
	const query = `
SELECT id, profile_id, title, url, icon, position, preview_image_url, preview_description, created_at
FROM links
WHERE profile_id = $1
ORDER BY position ASC, id ASC`

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, profileID)
	metrics.RecordOperationDuration("link_list_by_profile", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("ListByProfile: %w", err)
	}
	defer func() { _ = rows.Close() }()

	links := make([]*entity.Link, 0, 20)
	for rows.Next() {
		var link entity.Link
		if err := rows.Scan(&link.ID, &link.ProfileID, &link.Title, &link.URL, &link.Icon,
			&link.Position, &link.PreviewImageURL, &link.PreviewDescription, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByProfile: Scan: %w", err)
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func (repo *LinkRepo) Get(ctx context.Context, id int64) (*entity.Link, error) {
	const query = `
SELECT id, profile_id, title, url, icon, position, preview_image_url, preview_description, created_at
FROM links
WHERE id = $1`

	start := time.Now()
	row := repo.db.QueryRowContext(ctx, query, id)
	metrics.RecordOperationDuration("link_get", time.Since(start))

	var link entity.Link
	if err := row.Scan(&link.ID, &link.ProfileID, &link.Title, &link.URL, &link.Icon,
		&link.Position, &link.PreviewImageURL, &link.PreviewDescription, &link.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &link, nil
}

func (repo *LinkRepo) Create(ctx context.Context, link *entity.Link) error {
	const query = `
INSERT INTO links (profile_id, title, url, icon, position)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`

	start := time.Now()
	err := repo.db.QueryRowContext(ctx, query,
		link.ProfileID, link.Title, link.URL, link.Icon, link.Position).
		Scan(&link.ID, &link.CreatedAt)
	metrics.RecordOperationDuration("link_create", time.Since(start))
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *LinkRepo) Update(ctx context.Context, link *entity.Link) error {
	const query = `
UPDATE links
SET title = $1, url = $2, icon = $3, position = $4
WHERE id = $5`

	start := time.Now()
	res, err := repo.db.ExecContext(ctx, query,
		link.Title, link.URL, link.Icon, link.Position, link.ID)
	metrics.RecordOperationDuration("link_update", time.Since(start))
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *LinkRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM links WHERE id = $1`

	start := time.Now()
	res, err := repo.db.ExecContext(ctx, query, id)
	metrics.RecordOperationDuration("link_delete", time.Since(start))
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *LinkRepo) DeleteByProfile(ctx context.Context, profileID int64) error {
	const query = `DELETE FROM links WHERE profile_id = $1`

	start := time.Now()
	_, err := repo.db.ExecContext(ctx, query, profileID)
	metrics.RecordOperationDuration("link_delete_by_profile", time.Since(start))
	if err != nil {
		return fmt.Errorf("DeleteByProfile: %w", err)
	}
	return nil
}

// UpdatePreview writes the background job's preview result. A missing row is
// not an error here: the link may have been deleted while the job ran, and
// the write is simply moot.
func (repo *LinkRepo) UpdatePreview(ctx context.Context, id int64, update repository.PreviewUpdate) error {
	const query = `
UPDATE links
SET preview_image_url = $1, preview_description = $2
WHERE id = $3`

	start := time.Now()
	_, err := repo.db.ExecContext(ctx, query,
		update.PreviewImageURL, update.PreviewDescription, id)
	metrics.RecordOperationDuration("link_update_preview", time.Since(start))
	if err != nil {
		return fmt.Errorf("UpdatePreview: %w", err)
	}
	return nil
}
