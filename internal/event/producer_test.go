package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	pkgkafka "github.com/AlexandruMarc/Easy-Shops/pkg/kafka"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, event *pkgkafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, event: event})
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestTopics(t *testing.T) {
	assert.Equal(t, "easyshops.image.uploaded", TopicImageUploaded)
	assert.Equal(t, "easyshops.product.deleted", TopicProductDeleted)
	assert.Equal(t, "easyshops.user.deleted", TopicUserDeleted)
}

func TestPublishImagesUploaded_OneEventPerImage(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub, quiet())

	ctx := logger.WithCorrelationID(context.Background(), "corr-9")
	err := p.PublishImagesUploaded(ctx, []domain.Image{
		{ID: 1, ProductID: 5, FileName: "a.png"},
		{ID: 2, ProductID: 5, FileName: "b.png"},
	})
	require.NoError(t, err)
	require.Len(t, pub.sent, 2)

	first := pub.sent[0]
	assert.Equal(t, TopicImageUploaded, first.topic)
	assert.Equal(t, "1", first.event.AggregateID)
	assert.Equal(t, AggregateTypeImage, first.event.AggregateType)
	assert.Equal(t, SourceCatalogService, first.event.Source)
	assert.Equal(t, "corr-9", first.event.CorrelationID)

	var data ImageData
	require.NoError(t, first.event.UnmarshalData(&data))
	assert.Equal(t, int64(5), data.ProductID)
	assert.Equal(t, "a.png", data.FileName)
}

func TestPublishProductCreated_PriceAsFixedString(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub, quiet())

	err := p.PublishProductCreated(context.Background(), &domain.Product{
		ID: 7, Name: "Phone", Price: decimal.RequireFromString("10.5"), Category: domain.Category{Name: "Phones"},
	})
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)

	var data ProductData
	require.NoError(t, pub.sent[0].event.UnmarshalData(&data))
	assert.Equal(t, "10.50", data.Price)
	assert.Equal(t, "Phones", data.Category)
}

func TestPublishDeleted(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub, quiet())

	require.NoError(t, p.PublishImageDeleted(context.Background(), 3))
	require.NoError(t, p.PublishProductDeleted(context.Background(), 4))
	require.Len(t, pub.sent, 2)
	assert.Equal(t, TopicImageDeleted, pub.sent[0].topic)
	assert.Equal(t, TopicProductDeleted, pub.sent[1].topic)
	assert.JSONEq(t, `{"id":4}`, string(pub.sent[1].event.Data))
}

func TestPublish_ErrorIsWrapped(t *testing.T) {
	p := NewProducer(&fakePublisher{err: errors.New("broker down")}, quiet())

	err := p.PublishImageUpdated(context.Background(), &domain.Image{ID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish easyshops.image.updated event")
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublish_DisabledIsNoop(t *testing.T) {
	p := NewProducer(nil, quiet())
	assert.NoError(t, p.PublishProductUpdated(context.Background(), &domain.Product{ID: 1}))
}
