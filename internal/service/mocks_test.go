package service

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	"github.com/AlexandruMarc/Easy-Shops/internal/event"
	"github.com/AlexandruMarc/Easy-Shops/internal/repository"
	pkgkafka "github.com/AlexandruMarc/Easy-Shops/pkg/kafka"
)

// --- Mock repositories ---

type mockImageRepository struct {
	mock.Mock
}

func (m *mockImageRepository) CreateBatch(ctx context.Context, productID int64, uploads []domain.Upload, url repository.URLFunc) ([]domain.Image, error) {
	args := m.Called(ctx, productID, uploads, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Image), args.Error(1)
}

func (m *mockImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Image), args.Error(1)
}

func (m *mockImageRepository) ListByProductID(ctx context.Context, productID int64) ([]domain.Image, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Image), args.Error(1)
}

func (m *mockImageRepository) ReplaceContent(ctx context.Context, id int64, upload domain.Upload) (*domain.Image, error) {
	args := m.Called(ctx, id, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Image), args.Error(1)
}

func (m *mockImageRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockImageRepository) OpenContent(ctx context.Context, id int64) (*domain.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

type mockProfileImageRepository struct {
	mock.Mock
}

func (m *mockProfileImageRepository) Upsert(ctx context.Context, userID int64, upload domain.Upload, url repository.URLFunc) (*domain.ProfileImage, error) {
	args := m.Called(ctx, userID, upload, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileImage), args.Error(1)
}

func (m *mockProfileImageRepository) GetByUserID(ctx context.Context, userID int64) (*domain.ProfileImage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileImage), args.Error(1)
}

func (m *mockProfileImageRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockProfileImageRepository) OpenContent(ctx context.Context, userID int64) (*domain.Content, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock collaborators ---

type mockProductCache struct {
	mock.Mock
}

func (m *mockProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Bool(1), args.Error(2)
}

func (m *mockProductCache) Set(ctx context.Context, product *domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductCache) Invalidate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) Exists(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// recordingPublisher captures the topics events were published to.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer(pub *recordingPublisher) *event.Producer {
	return event.NewProducer(pub, newTestLogger())
}
