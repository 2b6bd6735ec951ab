package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository"
	"github.com/AlexandruMarc/Easy-Shops/pkg/database"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
)

const imageColumns = `id, file_name, file_type, size, data, download_url, product_id, created_at, updated_at`

// ImageRepository implements repository.ImageRepository using PostgreSQL
// large objects for the payload.
type ImageRepository struct {
	db database.DBTX
}

// NewImageRepository creates a new PostgreSQL-backed image repository.
func NewImageRepository(db database.DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

// CreateBatch stores every upload in a single transaction.
func (r *ImageRepository) CreateBatch(ctx context.Context, productID int64, uploads []domain.Upload, url repository.URLFunc) (images []domain.Image, err error) {
	ctx, end := database.TraceQuery(ctx, "CreateImages", "INSERT INTO images")
	defer func() { end(err) }()

	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 FOR SHARE)`, productID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check product %d: %w", productID, err)
		}
		if !exists {
			return apperrors.NotFound("Product", productID)
		}

		images = make([]domain.Image, 0, len(uploads))
		for _, u := range uploads {
			oid, size, err := writeLargeObject(ctx, tx, u.Content)
			if err != nil {
				return fmt.Errorf("store %s: %w", u.FileName, err)
			}

			img := domain.Image{
				FileName:  u.FileName,
				FileType:  u.ContentType,
				Size:      size,
				OID:       oid,
				ProductID: productID,
			}
			if err := tx.QueryRow(ctx, `
				INSERT INTO images (file_name, file_type, size, data, product_id)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, created_at, updated_at`,
				img.FileName, img.FileType, img.Size, img.OID, img.ProductID,
			).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt); err != nil {
				return fmt.Errorf("insert image %s: %w", u.FileName, err)
			}

			img.DownloadURL = url(img.ID)
			if _, err := tx.Exec(ctx,
				`UPDATE images SET download_url = $1 WHERE id = $2`, img.DownloadURL, img.ID,
			); err != nil {
				return fmt.Errorf("set download url for image %d: %w", img.ID, err)
			}
			images = append(images, img)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// GetByID retrieves image metadata by id.
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	return scanImage(r.db.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id), id)
}

// ListByProductID returns a product's images ordered by id.
func (r *ImageRepository) ListByProductID(ctx context.Context, productID int64) ([]domain.Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+imageColumns+` FROM images WHERE product_id = $1 ORDER BY id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []domain.Image{}
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(
			&img.ID, &img.FileName, &img.FileType, &img.Size, &img.OID,
			&img.DownloadURL, &img.ProductID, &img.CreatedAt, &img.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}
	return images, nil
}

// ReplaceContent writes the new payload, points the row at it and unlinks
// the previous large object, all in one transaction.
func (r *ImageRepository) ReplaceContent(ctx context.Context, id int64, upload domain.Upload) (img *domain.Image, err error) {
	ctx, end := database.TraceQuery(ctx, "ReplaceImage", "UPDATE images")
	defer func() { end(err) }()

	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanImage(tx.QueryRow(ctx,
			`SELECT `+imageColumns+` FROM images WHERE id = $1 FOR UPDATE`, id), id)
		if err != nil {
			return err
		}

		oid, size, err := writeLargeObject(ctx, tx, upload.Content)
		if err != nil {
			return fmt.Errorf("store %s: %w", upload.FileName, err)
		}

		if err := tx.QueryRow(ctx, `
			UPDATE images
			SET file_name = $1, file_type = $2, size = $3, data = $4, updated_at = NOW()
			WHERE id = $5
			RETURNING updated_at`,
			upload.FileName, upload.ContentType, size, oid, id,
		).Scan(&current.UpdatedAt); err != nil {
			return fmt.Errorf("update image %d: %w", id, err)
		}

		if err := unlinkLargeObject(ctx, tx, current.OID); err != nil {
			return err
		}

		current.FileName = upload.FileName
		current.FileType = upload.ContentType
		current.Size = size
		current.OID = oid
		img = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Delete removes the row and unlinks its payload.
func (r *ImageRepository) Delete(ctx context.Context, id int64) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var oid uint32
		err := tx.QueryRow(ctx, `DELETE FROM images WHERE id = $1 RETURNING data`, id).Scan(&oid)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("Image", id)
		}
		if err != nil {
			return fmt.Errorf("delete image %d: %w", id, err)
		}
		return unlinkLargeObject(ctx, tx, oid)
	})
}

// OpenContent begins a transaction, reads the row and returns a reader over
// the payload. Closing the reader commits the transaction.
func (r *ImageRepository) OpenContent(ctx context.Context, id int64) (*domain.Content, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}

	img, err := scanImage(tx.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id), id)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	return &domain.Content{
		FileName:    img.FileName,
		ContentType: img.FileType,
		Size:        img.Size,
		OID:         img.OID,
		ReadCloser:  newLargeObjectReader(ctx, tx, img.OID, img.Size),
	}, nil
}

func scanImage(row pgx.Row, id int64) (*domain.Image, error) {
	var img domain.Image
	err := row.Scan(
		&img.ID, &img.FileName, &img.FileType, &img.Size, &img.OID,
		&img.DownloadURL, &img.ProductID, &img.CreatedAt, &img.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Image", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get image %d: %w", id, err)
	}
	return &img, nil
}
