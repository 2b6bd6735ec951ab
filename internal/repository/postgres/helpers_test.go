package postgres

import (
	"bytes"
	"time"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
)

var (
	fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	imageCols = []string{
		"id", "file_name", "file_type", "size", "data", "download_url", "product_id", "created_at", "updated_at",
	}
	profileCols = []string{
		"id", "user_id", "file_name", "file_type", "size", "data", "download_url", "created_at", "updated_at",
	}
	productCols = []string{
		"id", "name", "brand", "price", "inventory", "description",
		"category_id", "category_name", "category_slug", "created_at", "updated_at",
	}
)

func upload(name string, payload []byte) domain.Upload {
	return domain.Upload{
		FileName:    name,
		ContentType: "image/png",
		Size:        int64(len(payload)),
		Content:     bytes.NewReader(payload),
	}
}

func downloadURL(id int64) string {
	return "/api/v1" + domain.ImageDownloadPath(id)
}
