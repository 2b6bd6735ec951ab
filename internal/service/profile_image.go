package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
)

// UserDirectory answers whether a user exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) error
}

// ProfileImageService manages one profile image per user.
type ProfileImageService struct {
	repo   repository.ProfileImageRepository
	users  UserDirectory
	links  Links
	logger *slog.Logger
}

// NewProfileImageService creates a new profile image service.
func NewProfileImageService(repo repository.ProfileImageRepository, users UserDirectory, links Links, logger *slog.Logger) *ProfileImageService {
	return &ProfileImageService{repo: repo, users: users, links: links, logger: logger}
}

// Upload stores or replaces userID's profile image. Failures are reported
// as upload failures, like product image uploads.
func (s *ProfileImageService) Upload(ctx context.Context, userID int64, upload domain.Upload) (domain.ImageDto, error) {
	if userID <= 0 {
		return domain.ImageDto{}, apperrors.UploadFailed(apperrors.InvalidInput("userId is required"))
	}
	if err := upload.Validate(); err != nil {
		return domain.ImageDto{}, apperrors.UploadFailed(apperrors.InvalidInput(err.Error()))
	}
	if err := s.users.Exists(ctx, userID); err != nil {
		return domain.ImageDto{}, apperrors.UploadFailed(err)
	}

	img, err := s.repo.Upsert(ctx, userID, upload, s.links.ProfileImage)
	if err != nil {
		return domain.ImageDto{}, apperrors.UploadFailed(err)
	}

	s.logger.InfoContext(ctx, "profile image stored",
		slog.Int64("user_id", userID),
		slog.Int64("image_id", img.ID),
	)
	return domain.ProfileToImageDto(img), nil
}

// Get returns the metadata of userID's profile image.
func (s *ProfileImageService) Get(ctx context.Context, userID int64) (domain.ImageDto, error) {
	img, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return domain.ImageDto{}, fmt.Errorf("get profile image: %w", err)
	}
	return domain.ProfileToImageDto(img), nil
}

// Open opens userID's profile image for streaming. The caller must Close it.
func (s *ProfileImageService) Open(ctx context.Context, userID int64) (*domain.Content, error) {
	content, err := s.repo.OpenContent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open profile image of user %d: %w", userID, err)
	}
	return content, nil
}

// Delete removes userID's profile image.
func (s *ProfileImageService) Delete(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete profile image: %w", err)
	}
	s.logger.InfoContext(ctx, "profile image deleted", slog.Int64("user_id", userID))
	return nil
}

// HandleUserDeleted drops the profile image of a user removed from the
// directory. A user without a profile image is not an error.
func (s *ProfileImageService) HandleUserDeleted(ctx context.Context, userID int64) error {
	err := s.Delete(ctx, userID)
	if apperrors.IsNotFound(err) {
		s.logger.DebugContext(ctx, "deleted user had no profile image", slog.Int64("user_id", userID))
		return nil
	}
	return err
}
