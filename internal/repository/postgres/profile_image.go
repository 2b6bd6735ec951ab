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

const profileImageColumns = `id, user_id, file_name, file_type, size, data, download_url, created_at, updated_at`

// ProfileImageRepository implements repository.ProfileImageRepository.
type ProfileImageRepository struct {
	db database.DBTX
}

// NewProfileImageRepository creates a new PostgreSQL-backed profile image repository.
func NewProfileImageRepository(db database.DBTX) *ProfileImageRepository {
	return &ProfileImageRepository{db: db}
}

// Upsert writes the payload and inserts or replaces the user's row. A
// replaced payload is unlinked in the same transaction.
func (r *ProfileImageRepository) Upsert(ctx context.Context, userID int64, upload domain.Upload, url repository.URLFunc) (img *domain.ProfileImage, err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertProfileImage", "INSERT INTO profile_images")
	defer func() { end(err) }()

	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		// Row locks cannot cover a user with no row yet, so concurrent first
		// uploads are serialized on the user id instead.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
			return fmt.Errorf("lock profile image for user %d: %w", userID, err)
		}

		var previous uint32
		err := tx.QueryRow(ctx,
			`SELECT data FROM profile_images WHERE user_id = $1 FOR UPDATE`, userID,
		).Scan(&previous)
		replacing := err == nil
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read profile image for user %d: %w", userID, err)
		}

		oid, size, err := writeLargeObject(ctx, tx, upload.Content)
		if err != nil {
			return fmt.Errorf("store %s: %w", upload.FileName, err)
		}

		p := domain.ProfileImage{
			UserID:      userID,
			FileName:    upload.FileName,
			FileType:    upload.ContentType,
			Size:        size,
			OID:         oid,
			DownloadURL: url(userID),
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO profile_images (user_id, file_name, file_type, size, data, download_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id) DO UPDATE
			SET file_name = EXCLUDED.file_name, file_type = EXCLUDED.file_type, size = EXCLUDED.size,
			    data = EXCLUDED.data, download_url = EXCLUDED.download_url, updated_at = NOW()
			RETURNING id, created_at, updated_at`,
			p.UserID, p.FileName, p.FileType, p.Size, p.OID, p.DownloadURL,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return fmt.Errorf("upsert profile image for user %d: %w", userID, err)
		}

		if replacing {
			if err := unlinkLargeObject(ctx, tx, previous); err != nil {
				return err
			}
		}
		img = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// GetByUserID retrieves the user's profile image metadata.
func (r *ProfileImageRepository) GetByUserID(ctx context.Context, userID int64) (*domain.ProfileImage, error) {
	return scanProfileImage(r.db.QueryRow(ctx,
		`SELECT `+profileImageColumns+` FROM profile_images WHERE user_id = $1`, userID), userID)
}

// DeleteByUserID removes the user's profile image and its payload.
func (r *ProfileImageRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var oid uint32
		err := tx.QueryRow(ctx,
			`DELETE FROM profile_images WHERE user_id = $1 RETURNING data`, userID,
		).Scan(&oid)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("Profile image for user", userID)
		}
		if err != nil {
			return fmt.Errorf("delete profile image for user %d: %w", userID, err)
		}
		return unlinkLargeObject(ctx, tx, oid)
	})
}

// OpenContent opens the user's profile image payload for streaming.
func (r *ProfileImageRepository) OpenContent(ctx context.Context, userID int64) (*domain.Content, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}

	img, err := scanProfileImage(tx.QueryRow(ctx,
		`SELECT `+profileImageColumns+` FROM profile_images WHERE user_id = $1`, userID), userID)
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

func scanProfileImage(row pgx.Row, userID int64) (*domain.ProfileImage, error) {
	var p domain.ProfileImage
	err := row.Scan(
		&p.ID, &p.UserID, &p.FileName, &p.FileType, &p.Size, &p.OID,
		&p.DownloadURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Profile image for user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile image for user %d: %w", userID, err)
	}
	return &p, nil
}
