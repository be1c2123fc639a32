package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnimmelf/eike-storefront/internal/domain"
	pkgkafka "github.com/gnimmelf/eike-storefront/pkg/kafka"
	"github.com/gnimmelf/eike-storefront/pkg/logger"
)

// Kafka topic constants for storefront activity events.
const (
	TopicProductViewed = "storefront.product.viewed"
	TopicItemAdded     = "storefront.cart.item_added"
	TopicAddRejected   = "storefront.cart.add_rejected"
)

// Aggregate type constant.
const AggregateTypeSession = "session"

// Source identifier for events originating from the storefront.
const SourceStorefront = "eike-storefront"

// ProductViewedData is the payload for a product.viewed event.
type ProductViewedData struct {
	SessionID   string `json:"session_id"`
	ProductID   string `json:"product_id"`
	ProductSlug string `json:"product_slug"`
	VariantID   string `json:"variant_id,omitempty"`
}

// ItemAddedData is the payload for a cart.item_added event.
type ItemAddedData struct {
	SessionID     string `json:"session_id"`
	VariantID     string `json:"variant_id"`
	Quantity      int    `json:"quantity"`
	OrderCode     string `json:"order_code"`
	TotalQuantity int    `json:"total_quantity"`
}

// AddRejectedData is the payload for a cart.add_rejected event.
type AddRejectedData struct {
	SessionID string `json:"session_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	ErrorCode string `json:"error_code"`
}

// Producer publishes storefront activity events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductViewed publishes a product.viewed event.
func (p *Producer) PublishProductViewed(ctx context.Context, sessionID string, product *domain.Product, variantID string) error {
	data := ProductViewedData{
		SessionID:   sessionID,
		ProductID:   product.ID,
		ProductSlug: product.Slug,
		VariantID:   variantID,
	}

	evt, err := pkgkafka.NewEvent(TopicProductViewed, sessionID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create product.viewed event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicProductViewed, evt); err != nil {
		return fmt.Errorf("publish product.viewed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.viewed event",
		slog.String("product_slug", product.Slug),
	)

	return nil
}

// PublishItemAdded publishes a cart.item_added event after a successful
// add-to-cart mutation.
func (p *Producer) PublishItemAdded(ctx context.Context, sessionID, variantID string, quantity int, order *domain.ActiveOrder) error {
	data := ItemAddedData{
		SessionID:     sessionID,
		VariantID:     variantID,
		Quantity:      quantity,
		OrderCode:     order.Code,
		TotalQuantity: order.TotalQuantity,
	}

	evt, err := pkgkafka.NewEvent(TopicItemAdded, sessionID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.item_added event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicItemAdded, evt); err != nil {
		return fmt.Errorf("publish cart.item_added event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.item_added event",
		slog.String("variant_id", variantID),
		slog.Int("quantity", quantity),
	)

	return nil
}

// PublishAddRejected publishes a cart.add_rejected event when the commerce
// API refuses an add-to-cart mutation.
func (p *Producer) PublishAddRejected(ctx context.Context, sessionID, variantID string, quantity int, orderErr *domain.OrderError) error {
	data := AddRejectedData{
		SessionID: sessionID,
		VariantID: variantID,
		Quantity:  quantity,
		ErrorCode: orderErr.Code,
	}

	evt, err := pkgkafka.NewEvent(TopicAddRejected, sessionID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.add_rejected event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicAddRejected, evt); err != nil {
		return fmt.Errorf("publish cart.add_rejected event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.add_rejected event",
		slog.String("variant_id", variantID),
		slog.String("error_code", orderErr.Code),
	)

	return nil
}
