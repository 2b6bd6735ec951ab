package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/shopspring/decimal"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/pkg/slug"
)

type productDef struct {
	name        string
	brand       string
	price       string
	inventory   int
	description string
	category    string
	color       color.RGBA
}

var catalog = []productDef{
	{"iPhone 15 Pro", "Apple", "999.99", 50, "Titanium design with A17 Pro chip.", "Electronics", color.RGBA{0x4a, 0x4a, 0x4a, 0xff}},
	{"Galaxy S24 Ultra", "Samsung", "1199.99", 40, "Built-in S Pen and 200MP camera.", "Electronics", color.RGBA{0x1e, 0x3a, 0x8a, 0xff}},
	{"WH-1000XM5", "Sony", "399.99", 75, "Noise-cancelling wireless headphones.", "Electronics", color.RGBA{0x11, 0x11, 0x11, 0xff}},
	{"Air Max 90", "Nike", "129.99", 120, "Classic running silhouette with visible Air.", "Shoes", color.RGBA{0xe5, 0x39, 0x35, 0xff}},
	{"Ultraboost Light", "Adidas", "189.99", 90, "Lightweight Boost cushioning.", "Shoes", color.RGBA{0xf5, 0xf5, 0xf5, 0xff}},
	{"501 Original Jeans", "Levi's", "79.50", 200, "Straight fit, button fly.", "Clothing", color.RGBA{0x25, 0x4e, 0x9a, 0xff}},
	{"Classic Fleece Jacket", "Patagonia", "149.00", 60, "Recycled polyester fleece.", "Clothing", color.RGBA{0x2e, 0x7d, 0x32, 0xff}},
	{"Kindle Paperwhite", "Amazon", "149.99", 80, "6.8 inch glare-free display.", "Books", color.RGBA{0x23, 0x2f, 0x3e, 0xff}},
	{"Instant Pot Duo", "Instant Brands", "89.95", 70, "7-in-1 electric pressure cooker.", "Home", color.RGBA{0xb0, 0xb0, 0xb0, 0xff}},
	{"LEGO Millennium Falcon", "LEGO", "169.99", 25, "1351-piece Star Wars set.", "Toys", color.RGBA{0xff, 0xc1, 0x07, 0xff}},
}

func (d productDef) request() (domain.AddProductRequest, error) {
	price, err := decimal.NewFromString(d.price)
	if err != nil {
		return domain.AddProductRequest{}, fmt.Errorf("price of %q: %w", d.name, err)
	}
	return domain.AddProductRequest{
		Name:        d.name,
		Brand:       d.brand,
		Price:       price,
		Inventory:   d.inventory,
		Description: d.description,
		Category:    d.category,
	}, nil
}

// placeholder renders a solid square PNG in the product's color.
func (d productDef) placeholder(size int) (domain.Upload, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, d.color)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return domain.Upload{}, fmt.Errorf("encode placeholder for %q: %w", d.name, err)
	}
	return domain.Upload{
		FileName:    slug.Generate(d.brand+" "+d.name) + ".png",
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Content:     &buf,
	}, nil
}
