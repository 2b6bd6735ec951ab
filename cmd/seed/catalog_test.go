package main

import (
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexandruMarc/Easy-Shops/pkg/validator"
)

func TestCatalog_RequestsAreValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range catalog {
		req, err := def.request()
		require.NoError(t, err, def.name)
		require.NoError(t, validator.Validate(req), def.name)
		assert.True(t, req.Price.IsPositive(), def.name)
		assert.NotEmpty(t, req.Category, def.name)

		key := req.Name + "|" + req.Brand
		assert.False(t, seen[key], "duplicate catalog entry %s", key)
		seen[key] = true
	}
}

func TestCatalog_PlaceholderIsUploadable(t *testing.T) {
	def := catalog[0]
	upload, err := def.placeholder(8)
	require.NoError(t, err)
	require.NoError(t, upload.Validate())

	assert.Equal(t, "apple-iphone-15-pro.png", upload.FileName)
	assert.Equal(t, "image/png", upload.ContentType)

	img, err := png.Decode(upload.Content)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(def.color.R)*0x101, r)
	assert.Equal(t, uint32(def.color.G)*0x101, g)
	assert.Equal(t, uint32(def.color.B)*0x101, b)
}

func TestProductDef_BadPrice(t *testing.T) {
	_, err := productDef{name: "x", price: "free"}.request()
	assert.Error(t, err)
}
