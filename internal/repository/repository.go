package repository

import (
	"context"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
)

// URLFunc derives the stored download URL from a freshly assigned identifier.
type URLFunc func(id int64) string

// ImageRepository defines persistence for product images and their payloads.
type ImageRepository interface {
	// CreateBatch stores every upload for productID in one transaction. The
	// product must exist; any failure leaves nothing behind.
	CreateBatch(ctx context.Context, productID int64, uploads []domain.Upload, url URLFunc) ([]domain.Image, error)

	// GetByID retrieves image metadata. Absence yields a NotFound error.
	GetByID(ctx context.Context, id int64) (*domain.Image, error)

	// ListByProductID returns a product's images ordered by id ascending.
	ListByProductID(ctx context.Context, productID int64) ([]domain.Image, error)

	// ReplaceContent swaps the payload, name and type of an image in place.
	ReplaceContent(ctx context.Context, id int64, upload domain.Upload) (*domain.Image, error)

	// Delete removes the image row and its large object.
	Delete(ctx context.Context, id int64) error

	// OpenContent opens the payload for streaming. The caller must Close it.
	OpenContent(ctx context.Context, id int64) (*domain.Content, error)
}

// ProfileImageRepository defines persistence for user profile images.
type ProfileImageRepository interface {
	// Upsert stores the user's profile image, replacing any previous payload.
	Upsert(ctx context.Context, userID int64, upload domain.Upload, url URLFunc) (*domain.ProfileImage, error)

	// GetByUserID retrieves the user's profile image metadata.
	GetByUserID(ctx context.Context, userID int64) (*domain.ProfileImage, error)

	// DeleteByUserID removes the profile image and its large object.
	DeleteByUserID(ctx context.Context, userID int64) error

	// OpenContent opens the payload for streaming. The caller must Close it.
	OpenContent(ctx context.Context, userID int64) (*domain.Content, error)
}

// ProductRepository defines persistence for products.
type ProductRepository interface {
	// Create inserts the product, creating its category on demand.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product with its category and images.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List returns products matching filter, each with its images.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	// Update replaces the product's fields, creating its category on demand.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes the product together with all its images and their
	// large objects in one transaction.
	Delete(ctx context.Context, id int64) error
}
