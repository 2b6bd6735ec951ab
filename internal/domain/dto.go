package domain

import "github.com/shopspring/decimal"

// ImageDto is the client-facing view of an image.
type ImageDto struct {
	ImageID     int64  `json:"imageId"`
	ImageName   string `json:"imageName"`
	DownloadURL string `json:"downloadURL"`
	ProductID   int64  `json:"productId,omitempty"`
}

// CategoryDto is the client-facing view of a category.
type CategoryDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductDto is the client-facing view of a product and its images.
type ProductDto struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Description string          `json:"description"`
	Category    CategoryDto     `json:"category"`
	Images      []ImageDto      `json:"images"`
}

// ToImageDto maps an image to its transfer form.
func ToImageDto(img *Image) ImageDto {
	return ImageDto{
		ImageID:     img.ID,
		ImageName:   img.FileName,
		DownloadURL: img.DownloadURL,
		ProductID:   img.ProductID,
	}
}

// ToImageDtos maps a slice of images, never returning nil.
func ToImageDtos(images []Image) []ImageDto {
	out := make([]ImageDto, 0, len(images))
	for i := range images {
		out = append(out, ToImageDto(&images[i]))
	}
	return out
}

// ProfileToImageDto maps a profile image to the shared image transfer form.
func ProfileToImageDto(img *ProfileImage) ImageDto {
	return ImageDto{
		ImageID:     img.ID,
		ImageName:   img.FileName,
		DownloadURL: img.DownloadURL,
	}
}

// ToProductDto maps a product and its images.
func ToProductDto(p *Product) ProductDto {
	return ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       p.Price,
		Inventory:   p.Inventory,
		Description: p.Description,
		Category:    CategoryDto{ID: p.Category.ID, Name: p.Category.Name},
		Images:      ToImageDtos(p.Images),
	}
}

// ToProductDtos maps a slice of products, never returning nil.
func ToProductDtos(products []Product) []ProductDto {
	out := make([]ProductDto, 0, len(products))
	for i := range products {
		out = append(out, ToProductDto(&products[i]))
	}
	return out
}
