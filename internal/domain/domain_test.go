package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedContentType(t *testing.T) {
	for ct := range AllowedContentTypes {
		assert.True(t, IsAllowedContentType(ct), ct)
	}
	assert.False(t, IsAllowedContentType("application/pdf"))
	assert.False(t, IsAllowedContentType(""))
}

func TestUpload_Validate(t *testing.T) {
	valid := Upload{FileName: "a.png", ContentType: "image/png", Size: 10, Content: strings.NewReader("x")}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(u *Upload)
		want   string
	}{
		{"no name", func(u *Upload) { u.FileName = "" }, "file name"},
		{"bad type", func(u *Upload) { u.ContentType = "text/plain" }, "unsupported content type"},
		{"empty", func(u *Upload) { u.Size = 0 }, "empty"},
		{"too large", func(u *Upload) { u.Size = MaxFileSize + 1 }, "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			err := u.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDownloadPaths(t *testing.T) {
	assert.Equal(t, "/images/image/download/12", ImageDownloadPath(12))
	assert.Equal(t, "/images/user/4/download", ProfileImageDownloadPath(4))
}

func TestImageDto_JSONShape(t *testing.T) {
	raw, err := json.Marshal(ToImageDto(&Image{ID: 3, FileName: "a.png", DownloadURL: "/api/v1/images/image/download/3", ProductID: 9}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"imageId":3,"imageName":"a.png","downloadURL":"/api/v1/images/image/download/3","productId":9}`, string(raw))

	raw, err = json.Marshal(ProfileToImageDto(&ProfileImage{ID: 1, UserID: 5, FileName: "me.jpg", DownloadURL: "/u"}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "productId")
}

func TestToProductDto(t *testing.T) {
	p := &Product{
		ID:        7,
		Name:      "Phone",
		Brand:     "Acme",
		Price:     decimal.RequireFromString("199.90"),
		Inventory: 3,
		Category:  Category{ID: 2, Name: "Electronics", Slug: "electronics"},
		Images:    []Image{{ID: 1, FileName: "front.png", ProductID: 7}},
	}

	dto := ToProductDto(p)
	assert.Equal(t, int64(7), dto.ID)
	assert.Equal(t, CategoryDto{ID: 2, Name: "Electronics"}, dto.Category)
	require.Len(t, dto.Images, 1)
	assert.Equal(t, "front.png", dto.Images[0].ImageName)

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":"199.9"`)
}

func TestToProductDtos_EmptyIsNotNil(t *testing.T) {
	dtos := ToProductDtos(nil)
	require.NotNil(t, dtos)
	raw, _ := json.Marshal(dtos)
	assert.Equal(t, "[]", string(raw))

	assert.NotNil(t, ToProductDto(&Product{}).Images)
}
