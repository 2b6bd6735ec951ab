package domain

import (
	"fmt"
	"io"
	"time"
)

// Allowed content types for image uploads.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MaxFileSize is the maximum allowed file size in bytes (10 MiB).
const MaxFileSize int64 = 10 * 1024 * 1024

// Image is a product picture. The payload lives in a PostgreSQL large object
// referenced by OID; ProductID always points at a live product.
type Image struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	Size        int64     `json:"size"`
	OID         uint32    `json:"-"`
	DownloadURL string    `json:"download_url"`
	ProductID   int64     `json:"product_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileImage is a user's avatar, one per user.
type ProfileImage struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	Size        int64     `json:"size"`
	OID         uint32    `json:"-"`
	DownloadURL string    `json:"download_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Upload is one file received from a multipart request.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Validate checks the content type and size limits.
func (u Upload) Validate() error {
	if u.FileName == "" {
		return fmt.Errorf("file name is required")
	}
	if !IsAllowedContentType(u.ContentType) {
		return fmt.Errorf("unsupported content type %q", u.ContentType)
	}
	if u.Size <= 0 {
		return fmt.Errorf("file %s is empty", u.FileName)
	}
	if u.Size > MaxFileSize {
		return fmt.Errorf("file %s exceeds the %d byte limit", u.FileName, MaxFileSize)
	}
	return nil
}

// Content is an open large-object payload. Close must be called once the
// bytes have been consumed; it ends the read transaction.
type Content struct {
	FileName    string
	ContentType string
	Size        int64
	// OID identifies the stored payload. Every upload or replacement gets a
	// fresh one, so it versions the bytes.
	OID uint32
	io.ReadCloser
}

// IsAllowedContentType checks whether the given content type is allowed.
func IsAllowedContentType(contentType string) bool {
	return AllowedContentTypes[contentType]
}

// ImageDownloadPath returns the path under the API prefix that serves image id.
func ImageDownloadPath(id int64) string {
	return fmt.Sprintf("/images/image/download/%d", id)
}

// ProfileImageDownloadPath returns the path that serves userID's profile image.
func ProfileImageDownloadPath(userID int64) string {
	return fmt.Sprintf("/images/user/%d/download", userID)
}
