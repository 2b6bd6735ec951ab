package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/AlexandruMarc/Easy-Shops/internal/domain"
	pkgkafka "github.com/AlexandruMarc/Easy-Shops/pkg/kafka"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

// Kafka topics for catalog domain events.
var (
	TopicImageUploaded  = pkgkafka.Topic("image", "uploaded")
	TopicImageUpdated   = pkgkafka.Topic("image", "updated")
	TopicImageDeleted   = pkgkafka.Topic("image", "deleted")
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
	TopicUserDeleted    = pkgkafka.Topic("user", "deleted")
)

// Aggregate types.
const (
	AggregateTypeImage   = "image"
	AggregateTypeProduct = "product"
)

// SourceCatalogService identifies events published by this service.
const SourceCatalogService = "easyshops-catalog"

// ImageData is the payload of image.uploaded and image.updated events.
type ImageData struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// ProductData is the payload of product.created and product.updated events.
type ProductData struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Price     string `json:"price"`
	Inventory int    `json:"inventory"`
	Category  string `json:"category"`
}

// DeletedData is the payload of every *.deleted event this service publishes.
type DeletedData struct {
	ID int64 `json:"id"`
}

// UserDeletedData is the payload of the user.deleted event consumed from the
// user service.
type UserDeletedData struct {
	UserID int64 `json:"user_id"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events. A nil publisher disables it.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. Pass nil when Kafka is disabled.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishImagesUploaded publishes one image.uploaded event per image.
func (p *Producer) PublishImagesUploaded(ctx context.Context, images []domain.Image) error {
	for i := range images {
		img := &images[i]
		if err := p.publish(ctx, TopicImageUploaded, img.ID, AggregateTypeImage, imageData(img)); err != nil {
			return err
		}
	}
	return nil
}

// PublishImageUpdated publishes an image.updated event.
func (p *Producer) PublishImageUpdated(ctx context.Context, img *domain.Image) error {
	return p.publish(ctx, TopicImageUpdated, img.ID, AggregateTypeImage, imageData(img))
}

// PublishImageDeleted publishes an image.deleted event.
func (p *Producer) PublishImageDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicImageDeleted, id, AggregateTypeImage, DeletedData{ID: id})
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, DeletedData{ID: id})
}

func (p *Producer) publish(ctx context.Context, topic string, id int64, aggregateType string, data any) error {
	if p.kafka == nil {
		return nil
	}

	aggregateID := strconv.FormatInt(id, 10)
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func imageData(img *domain.Image) ImageData {
	return ImageData{
		ID:          img.ID,
		ProductID:   img.ProductID,
		FileName:    img.FileName,
		FileType:    img.FileType,
		Size:        img.Size,
		DownloadURL: img.DownloadURL,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.Price.StringFixed(2),
		Inventory: p.Inventory,
		Category:  p.Category.Name,
	}
}
