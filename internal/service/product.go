package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AlexandruMarc/Easy-Shops/internal/cache"
	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/event"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	cache    cache.ProductCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, productCache cache.ProductCache, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    productCache,
		producer: producer,
		logger:   logger,
	}
}

// List returns the products matching filter.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductDto, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return domain.ToProductDtos(products), nil
}

// Get returns a product with its images, served from the cache when possible.
func (s *ProductService) Get(ctx context.Context, id int64) (domain.ProductDto, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "product cache read failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	if ok {
		return domain.ToProductDto(cached), nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ProductDto{}, fmt.Errorf("get product by id: %w", err)
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	return domain.ToProductDto(product), nil
}

// Add creates a product, creating its category when it does not exist yet.
func (s *ProductService) Add(ctx context.Context, req domain.AddProductRequest) (domain.ProductDto, error) {
	product := &domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Brand:       strings.TrimSpace(req.Brand),
		Price:       req.Price,
		Inventory:   req.Inventory,
		Description: req.Description,
		Category:    domain.Category{Name: strings.TrimSpace(req.Category)},
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return domain.ProductDto{}, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("category", product.Category.Name),
	)
	return domain.ToProductDto(product), nil
}

// Update replaces every mutable field of product id.
func (s *ProductService) Update(ctx context.Context, id int64, req domain.UpdateProductRequest) (domain.ProductDto, error) {
	product := &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Brand:       strings.TrimSpace(req.Brand),
		Price:       req.Price,
		Inventory:   req.Inventory,
		Description: req.Description,
		Category:    domain.Category{Name: strings.TrimSpace(req.Category)},
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return domain.ProductDto{}, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx, id)
	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.Int64("product_id", id))

	// Reload so the response carries the product's images.
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ProductDto{}, fmt.Errorf("reload product: %w", err)
	}
	return domain.ToProductDto(updated), nil
}

// Delete removes a product together with all its images.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidate(ctx, id)
	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.Int64("product_id", id))
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached product",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
