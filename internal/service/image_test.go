package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/event"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository"
	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
)

type imageFixture struct {
	repo  *mockImageRepository
	cache *mockProductCache
	pub   *recordingPublisher
	svc   *ImageService
}

func newImageFixture() *imageFixture {
	f := &imageFixture{
		repo:  new(mockImageRepository),
		cache: new(mockProductCache),
		pub:   &recordingPublisher{},
	}
	f.svc = NewImageService(f.repo, f.cache, newTestProducer(f.pub), NewLinks("", "/api/v1"), 3, newTestLogger())
	return f
}

func pngUpload(name string) domain.Upload {
	return domain.Upload{FileName: name, ContentType: "image/png", Size: 4, Content: strings.NewReader("\x89PNG")}
}

func TestImageUpload_Success(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	uploads := []domain.Upload{pngUpload("front.png"), pngUpload("back.png")}

	f.repo.On("CreateBatch", ctx, int64(5), uploads, mock.Anything).
		Run(func(args mock.Arguments) {
			url := args.Get(3).(repository.URLFunc)
			assert.Equal(t, "/api/v1/images/image/download/11", url(11))
		}).
		Return([]domain.Image{
			{ID: 11, FileName: "front.png", ProductID: 5, DownloadURL: "/api/v1/images/image/download/11"},
			{ID: 12, FileName: "back.png", ProductID: 5, DownloadURL: "/api/v1/images/image/download/12"},
		}, nil)
	f.cache.On("Invalidate", ctx, int64(5)).Return(nil)

	dtos, err := f.svc.Upload(ctx, 5, uploads)
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, int64(11), dtos[0].ImageID)
	assert.Equal(t, "front.png", dtos[0].ImageName)
	assert.Equal(t, "back.png", dtos[1].ImageName)
	assert.Equal(t, []string{event.TopicImageUploaded, event.TopicImageUploaded}, f.pub.published())

	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestImageUpload_RejectedBeforeStorage(t *testing.T) {
	tests := []struct {
		name      string
		productID int64
		uploads   []domain.Upload
		cause     string
	}{
		{"missing product id", 0, []domain.Upload{pngUpload("a.png")}, "productId is required"},
		{"no files", 5, nil, "at least one file is required"},
		{"too many files", 5, []domain.Upload{pngUpload("a.png"), pngUpload("b.png"), pngUpload("c.png"), pngUpload("d.png")}, "too many files"},
		{"bad content type", 5, []domain.Upload{{FileName: "a.txt", ContentType: "text/plain", Size: 1, Content: strings.NewReader("x")}}, "unsupported content type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImageFixture()

			_, err := f.svc.Upload(context.Background(), tt.productID, tt.uploads)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrUploadFailed))
			assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
			assert.Contains(t, err.Error(), tt.cause)

			f.repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, f.pub.published())
		})
	}
}

func TestImageUpload_UnknownProductIsUploadFailure(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	uploads := []domain.Upload{pngUpload("a.png")}

	f.repo.On("CreateBatch", ctx, int64(404), uploads, mock.Anything).
		Return(nil, apperrors.NotFound("Product", int64(404)))

	_, err := f.svc.Upload(ctx, 404, uploads)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUploadFailed))
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestImageUpload_PublishFailureDoesNotFail(t *testing.T) {
	f := newImageFixture()
	f.pub.err = errors.New("broker down")
	ctx := context.Background()
	uploads := []domain.Upload{pngUpload("a.png")}

	f.repo.On("CreateBatch", ctx, int64(5), uploads, mock.Anything).
		Return([]domain.Image{{ID: 1, FileName: "a.png", ProductID: 5}}, nil)
	f.cache.On("Invalidate", ctx, int64(5)).Return(errors.New("redis down"))

	dtos, err := f.svc.Upload(ctx, 5, uploads)
	require.NoError(t, err)
	assert.Len(t, dtos, 1)
}

func TestImageGet_NotFound(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	f.repo.On("GetByID", ctx, int64(9)).Return(nil, apperrors.NotFound("Image", int64(9)))

	_, err := f.svc.Get(ctx, 9)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
}

func TestImageListByProduct(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	f.repo.On("ListByProductID", ctx, int64(5)).Return([]domain.Image{}, nil)

	dtos, err := f.svc.ListByProduct(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, dtos)
	assert.Empty(t, dtos)
}

func TestImageOpen(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	content := &domain.Content{FileName: "a.png", ContentType: "image/png", Size: 3, ReadCloser: io.NopCloser(strings.NewReader("abc"))}
	f.repo.On("OpenContent", ctx, int64(1)).Return(content, nil)
	f.repo.On("OpenContent", ctx, int64(2)).Return(nil, apperrors.NotFound("Image", int64(2)))

	got, err := f.svc.Open(ctx, 1)
	require.NoError(t, err)
	body, _ := io.ReadAll(got)
	assert.Equal(t, "abc", string(body))
	require.NoError(t, got.Close())

	_, err = f.svc.Open(ctx, 2)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestImageUpdate_Success(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	upload := pngUpload("new.png")

	f.repo.On("ReplaceContent", ctx, int64(7), upload).
		Return(&domain.Image{ID: 7, FileName: "new.png", ProductID: 5, DownloadURL: "/api/v1/images/image/download/7"}, nil)
	f.cache.On("Invalidate", ctx, int64(5)).Return(nil)

	dto, err := f.svc.Update(ctx, 7, upload)
	require.NoError(t, err)
	assert.Equal(t, int64(7), dto.ImageID)
	assert.Equal(t, "new.png", dto.ImageName)
	assert.Equal(t, []string{event.TopicImageUpdated}, f.pub.published())
}

func TestImageUpdate_NotFound(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	upload := pngUpload("new.png")
	f.repo.On("ReplaceContent", ctx, int64(7), upload).Return(nil, apperrors.NotFound("Image", int64(7)))

	_, err := f.svc.Update(ctx, 7, upload)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
	assert.Empty(t, f.pub.published())
}

func TestImageUpdate_InvalidFile(t *testing.T) {
	f := newImageFixture()
	upload := domain.Upload{FileName: "a.pdf", ContentType: "application/pdf", Size: 1, Content: strings.NewReader("x")}

	_, err := f.svc.Update(context.Background(), 7, upload)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	f.repo.AssertNotCalled(t, "ReplaceContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestImageDelete_Success(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(7)).Return(&domain.Image{ID: 7, ProductID: 5}, nil)
	f.repo.On("Delete", ctx, int64(7)).Return(nil)
	f.cache.On("Invalidate", ctx, int64(5)).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, 7))
	assert.Equal(t, []string{event.TopicImageDeleted}, f.pub.published())
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestImageDelete_NotFound(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	f.repo.On("GetByID", ctx, int64(7)).Return(nil, apperrors.NotFound("Image", int64(7)))

	err := f.svc.Delete(ctx, 7)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestImageDelete_StorageFailure(t *testing.T) {
	f := newImageFixture()
	ctx := context.Background()
	f.repo.On("GetByID", ctx, int64(7)).Return(&domain.Image{ID: 7, ProductID: 5}, nil)
	f.repo.On("Delete", ctx, int64(7)).Return(errors.New("lo_unlink failed"))

	err := f.svc.Delete(ctx, 7)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	assert.Empty(t, f.pub.published())
}
