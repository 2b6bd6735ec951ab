package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexandruMarc/Easy-Shops/internal/cache"
	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/event"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
)

// ImageService implements the business logic for product images.
type ImageService struct {
	repo     repository.ImageRepository
	cache    cache.ProductCache
	producer *event.Producer
	links    Links
	maxFiles int
	logger   *slog.Logger
}

// NewImageService creates a new image service. maxFiles caps the number of
// files accepted by one upload.
func NewImageService(
	repo repository.ImageRepository,
	productCache cache.ProductCache,
	producer *event.Producer,
	links Links,
	maxFiles int,
	logger *slog.Logger,
) *ImageService {
	return &ImageService{
		repo:     repo,
		cache:    productCache,
		producer: producer,
		links:    links,
		maxFiles: maxFiles,
		logger:   logger,
	}
}

// Upload stores every file for productID in one transaction. Any failure,
// including a missing product or an invalid file, is reported as an upload
// failure and nothing is stored.
func (s *ImageService) Upload(ctx context.Context, productID int64, uploads []domain.Upload) ([]domain.ImageDto, error) {
	if productID <= 0 {
		return nil, apperrors.UploadFailed(apperrors.InvalidInput("productId is required"))
	}
	if len(uploads) == 0 {
		return nil, apperrors.UploadFailed(apperrors.InvalidInput("at least one file is required"))
	}
	if len(uploads) > s.maxFiles {
		return nil, apperrors.UploadFailed(apperrors.InvalidInput(
			fmt.Sprintf("too many files: %d (max %d)", len(uploads), s.maxFiles)))
	}
	for _, u := range uploads {
		if err := u.Validate(); err != nil {
			return nil, apperrors.UploadFailed(apperrors.InvalidInput(err.Error()))
		}
	}

	images, err := s.repo.CreateBatch(ctx, productID, uploads, s.links.Image)
	if err != nil {
		return nil, apperrors.UploadFailed(err)
	}

	s.invalidateProduct(ctx, productID)
	if err := s.producer.PublishImagesUploaded(ctx, images); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish image.uploaded events",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "images uploaded",
		slog.Int64("product_id", productID),
		slog.Int("count", len(images)),
	)
	return domain.ToImageDtos(images), nil
}

// Get returns image metadata.
func (s *ImageService) Get(ctx context.Context, id int64) (domain.ImageDto, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ImageDto{}, fmt.Errorf("get image: %w", err)
	}
	return domain.ToImageDto(img), nil
}

// ListByProduct returns a product's images ordered by id.
func (s *ImageService) ListByProduct(ctx context.Context, productID int64) ([]domain.ImageDto, error) {
	images, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list images of product %d: %w", productID, err)
	}
	return domain.ToImageDtos(images), nil
}

// Open opens an image payload for streaming. The caller must Close it.
func (s *ImageService) Open(ctx context.Context, id int64) (*domain.Content, error) {
	content, err := s.repo.OpenContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open image %d: %w", id, err)
	}
	return content, nil
}

// Update replaces an image's payload, name and type. The image keeps its id.
func (s *ImageService) Update(ctx context.Context, id int64, upload domain.Upload) (domain.ImageDto, error) {
	if err := upload.Validate(); err != nil {
		return domain.ImageDto{}, apperrors.InvalidInput(err.Error())
	}

	img, err := s.repo.ReplaceContent(ctx, id, upload)
	if err != nil {
		return domain.ImageDto{}, fmt.Errorf("update image: %w", err)
	}

	s.invalidateProduct(ctx, img.ProductID)
	if err := s.producer.PublishImageUpdated(ctx, img); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish image.updated event",
			slog.Int64("image_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "image updated", slog.Int64("image_id", id))
	return domain.ToImageDto(img), nil
}

// Delete removes an image and its payload.
func (s *ImageService) Delete(ctx context.Context, id int64) error {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get image: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	s.invalidateProduct(ctx, img.ProductID)
	if err := s.producer.PublishImageDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish image.deleted event",
			slog.Int64("image_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "image deleted", slog.Int64("image_id", id))
	return nil
}

// invalidateProduct drops the cached product whose image list changed.
func (s *ImageService) invalidateProduct(ctx context.Context, productID int64) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached product",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}
