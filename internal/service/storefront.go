// Package service implements the storefront's page and cart orchestration on
// top of the commerce client, the session store and the event producer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gnimmelf/eike-storefront/internal/commerce"
	"github.com/gnimmelf/eike-storefront/internal/domain"
	apperrors "github.com/gnimmelf/eike-storefront/pkg/errors"
	"github.com/gnimmelf/eike-storefront/pkg/validator"
)

// submitLockTTL bounds how long a lost in-flight guard can block a session's
// cart submissions.
const submitLockTTL = 30 * time.Second

var addToCartOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_add_to_cart_total",
	Help: "Add-to-cart submissions by outcome.",
}, []string{"outcome"})

// CommerceClient is the slice of the commerce API the storefront needs.
type CommerceClient interface {
	GetCollections(ctx context.Context) ([]domain.Collection, error)
	GetCollection(ctx context.Context, slug string) (*domain.Collection, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetActiveOrder(ctx context.Context, token string) (*domain.ActiveOrder, error)
	AddItemToOrder(ctx context.Context, token, variantID string, quantity int) (commerce.AddItemResult, string, error)
}

// SessionStore is the per-session state the storefront reads and writes.
type SessionStore interface {
	Token(ctx context.Context, sessionID string) (string, error)
	SetToken(ctx context.Context, sessionID, token string) error
	SetOrderError(ctx context.Context, sessionID string, orderErr *domain.OrderError) error
	TakeOrderError(ctx context.Context, sessionID string) (*domain.OrderError, error)
	AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, sessionID string) error
}

// EventPublisher publishes storefront activity events. Publishing is best
// effort; failures never fail the shopper's request.
type EventPublisher interface {
	PublishProductViewed(ctx context.Context, sessionID string, product *domain.Product, variantID string) error
	PublishItemAdded(ctx context.Context, sessionID, variantID string, quantity int, order *domain.ActiveOrder) error
	PublishAddRejected(ctx context.Context, sessionID, variantID string, quantity int, orderErr *domain.OrderError) error
}

// Shell is the page chrome shared by every view: navigation collections, the
// cart badge order, and the one-shot order error. Reading the shell consumes
// the error slot, so a refresh renders clean.
type Shell struct {
	NavCollections []domain.Collection
	Order          *domain.ActiveOrder
	OrderError     *domain.OrderError
}

// HomeView is the data for the landing page; the collection grid reuses the
// shell's navigation collections.
type HomeView struct {
	Shell Shell
}

// ProductView is the data for the product detail page.
type ProductView struct {
	Shell     Shell
	Product   *domain.Product
	Selection domain.Selection
	// InCartQty is how many units of the selected variant the open order
	// already holds.
	InCartQty int
}

// CollectionView is the data for a collection listing page.
type CollectionView struct {
	Shell      Shell
	Collection *domain.Collection
}

// AddToCartInput holds the parameters of a cart submission.
type AddToCartInput struct {
	VariantID string `validate:"required"`
	Quantity  int    `validate:"required,gte=1,lte=100"`
}

// AddToCartResult is the outcome of a cart submission. At most one of Order
// and OrderErr is set; Dropped marks a duplicate submission swallowed by the
// in-flight guard.
type AddToCartResult struct {
	Order    *domain.ActiveOrder
	OrderErr *domain.OrderError
	Dropped  bool
}

// Storefront implements the business logic for storefront pages and cart
// submissions.
type Storefront struct {
	commerce CommerceClient
	sessions SessionStore
	events   EventPublisher
	logger   *slog.Logger
}

// NewStorefront creates a new storefront service.
func NewStorefront(commerceClient CommerceClient, sessions SessionStore, events EventPublisher, logger *slog.Logger) *Storefront {
	return &Storefront{
		commerce: commerceClient,
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

// HomePage builds the landing page view.
func (s *Storefront) HomePage(ctx context.Context, sessionID string) (*HomeView, error) {
	shell, err := s.buildShell(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &HomeView{Shell: shell}, nil
}

// ProductPage builds the product detail view. requestedVariantID and
// requestedAssetID come from the page URL and may be empty or stale; the
// resolved selection never trusts them blindly.
func (s *Storefront) ProductPage(ctx context.Context, sessionID, slug, requestedVariantID, requestedAssetID string) (*ProductView, error) {
	product, err := s.commerce.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	shell, err := s.buildShell(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	selection := domain.Resolve(product, requestedVariantID, requestedAssetID)

	inCart := 0
	if selection.HasVariant() {
		inCart = shell.Order.QuantityForVariant(selection.VariantID())
	}

	if err := s.events.PublishProductViewed(ctx, sessionID, product, selection.VariantID()); err != nil {
		s.logger.WarnContext(ctx, "publish product viewed failed", slog.Any("error", err))
	}

	return &ProductView{
		Shell:     shell,
		Product:   product,
		Selection: selection,
		InCartQty: inCart,
	}, nil
}

// CollectionPage builds a collection listing view.
func (s *Storefront) CollectionPage(ctx context.Context, sessionID, slug string) (*CollectionView, error) {
	collection, err := s.commerce.GetCollection(ctx, slug)
	if err != nil {
		return nil, err
	}

	shell, err := s.buildShell(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &CollectionView{Shell: shell, Collection: collection}, nil
}

// ActiveOrder returns the session's open order, or nil when there is none.
func (s *Storefront) ActiveOrder(ctx context.Context, sessionID string) (*domain.ActiveOrder, error) {
	token, err := s.sessions.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	order, err := s.commerce.GetActiveOrder(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch active order: %w", err)
	}
	return order, nil
}

// AddToCart submits an add-item mutation for the session. Domain rejections
// from the commerce API land in the session's one-shot error slot and in
// AddToCartResult; only transport and infrastructure failures return an error.
func (s *Storefront) AddToCart(ctx context.Context, sessionID string, input AddToCartInput) (AddToCartResult, error) {
	if err := validator.Validate(input); err != nil {
		return AddToCartResult{}, apperrors.InvalidInput(err.Error())
	}

	acquired, err := s.sessions.AcquireSubmitLock(ctx, sessionID, submitLockTTL)
	if err != nil {
		return AddToCartResult{}, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !acquired {
		s.logger.InfoContext(ctx, "dropped duplicate cart submission",
			slog.String("variant_id", input.VariantID),
		)
		addToCartOutcomes.WithLabelValues("dropped").Inc()
		return AddToCartResult{Dropped: true}, nil
	}
	defer func() {
		if err := s.sessions.ReleaseSubmitLock(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "release submit lock failed", slog.Any("error", err))
		}
	}()

	token, err := s.sessions.Token(ctx, sessionID)
	if err != nil {
		return AddToCartResult{}, fmt.Errorf("load session token: %w", err)
	}

	result, newToken, err := s.commerce.AddItemToOrder(ctx, token, input.VariantID, input.Quantity)
	if err != nil {
		addToCartOutcomes.WithLabelValues("failed").Inc()
		return AddToCartResult{}, err
	}

	// The shop API rotates the auth token when it opens a session; losing
	// the rotated token orphans the cart, so this write is not best effort.
	if newToken != "" && newToken != token {
		if err := s.sessions.SetToken(ctx, sessionID, newToken); err != nil {
			return AddToCartResult{}, fmt.Errorf("persist session token: %w", err)
		}
	}

	if result.Err != nil {
		// Only codes with shopper-appropriate wording enter the one-shot
		// slot; anything else stays in logs and metrics.
		if result.Err.UserMessage() != "" {
			if err := s.sessions.SetOrderError(ctx, sessionID, result.Err); err != nil {
				return AddToCartResult{}, fmt.Errorf("store order error: %w", err)
			}
		}
		if err := s.events.PublishAddRejected(ctx, sessionID, input.VariantID, input.Quantity, result.Err); err != nil {
			s.logger.WarnContext(ctx, "publish add rejected failed", slog.Any("error", err))
		}
		s.logger.InfoContext(ctx, "cart submission rejected",
			slog.String("variant_id", input.VariantID),
			slog.String("error_code", result.Err.Code),
		)
		addToCartOutcomes.WithLabelValues("rejected").Inc()
		return AddToCartResult{OrderErr: result.Err}, nil
	}

	if err := s.events.PublishItemAdded(ctx, sessionID, input.VariantID, input.Quantity, result.Order); err != nil {
		s.logger.WarnContext(ctx, "publish item added failed", slog.Any("error", err))
	}
	addToCartOutcomes.WithLabelValues("accepted").Inc()

	return AddToCartResult{Order: result.Order}, nil
}

// buildShell assembles the chrome every page shares. The navigation
// collections are load-bearing; the order badge and the error slot degrade to
// empty on infrastructure trouble rather than failing the page.
func (s *Storefront) buildShell(ctx context.Context, sessionID string) (Shell, error) {
	collections, err := s.commerce.GetCollections(ctx)
	if err != nil {
		return Shell{}, fmt.Errorf("load navigation collections: %w", err)
	}

	shell := Shell{NavCollections: collections}

	order, err := s.ActiveOrder(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "load active order failed", slog.Any("error", err))
	} else {
		shell.Order = order
	}

	orderErr, err := s.sessions.TakeOrderError(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "take order error failed", slog.Any("error", err))
	} else {
		shell.OrderError = orderErr
	}

	return shell, nil
}
