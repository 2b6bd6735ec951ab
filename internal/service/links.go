package service

import (
	"strings"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
)

// Links builds the public download URLs stored alongside image rows.
type Links struct {
	base string
}

// NewLinks joins the public base URL (may be empty) with the API prefix.
func NewLinks(publicBaseURL, apiPrefix string) Links {
	return Links{base: strings.TrimRight(publicBaseURL, "/") + strings.TrimRight(apiPrefix, "/")}
}

// Image returns the download URL of image id.
func (l Links) Image(id int64) string {
	return l.base + domain.ImageDownloadPath(id)
}

// ProfileImage returns the download URL of userID's profile image.
func (l Links) ProfileImage(userID int64) string {
	return l.base + domain.ProfileImageDownloadPath(userID)
}
