package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnimmelf/eike-storefront/internal/commerce"
	"github.com/gnimmelf/eike-storefront/internal/domain"
	"github.com/gnimmelf/eike-storefront/internal/event"
	"github.com/gnimmelf/eike-storefront/internal/render"
	"github.com/gnimmelf/eike-storefront/internal/service"
	"github.com/gnimmelf/eike-storefront/internal/session"
	apperrors "github.com/gnimmelf/eike-storefront/pkg/errors"
	"github.com/gnimmelf/eike-storefront/pkg/health"
	pkgkafka "github.com/gnimmelf/eike-storefront/pkg/kafka"
)

// stubCommerce fakes the shop API at the client boundary; everything above it
// is the real stack.
type stubCommerce struct {
	collections []domain.Collection
	collection  *domain.Collection
	product     *domain.Product
	activeOrder *domain.ActiveOrder
	addResult   commerce.AddItemResult
	addToken    string

	lastVariant string
	lastQty     int
	addCalls    int
}

func (s *stubCommerce) GetCollections(ctx context.Context) ([]domain.Collection, error) {
	return s.collections, nil
}

func (s *stubCommerce) GetCollection(ctx context.Context, slug string) (*domain.Collection, error) {
	if s.collection == nil || s.collection.Slug != slug {
		return nil, apperrors.NotFound("collection", slug)
	}
	return s.collection, nil
}

func (s *stubCommerce) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if s.product == nil || s.product.Slug != slug {
		return nil, apperrors.NotFound("product", slug)
	}
	return s.product, nil
}

func (s *stubCommerce) GetActiveOrder(ctx context.Context, token string) (*domain.ActiveOrder, error) {
	return s.activeOrder, nil
}

func (s *stubCommerce) AddItemToOrder(ctx context.Context, token, variantID string, quantity int) (commerce.AddItemResult, string, error) {
	s.addCalls++
	s.lastVariant = variantID
	s.lastQty = quantity
	return s.addResult, s.addToken, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	commerce *stubCommerce
	sessions *session.Store
}

func newTestEnv(t *testing.T, sc *stubCommerce) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	logger := testLogger()
	sessions := session.NewStore(redisClient, time.Hour)

	// The producer is async; nothing is flushed to a broker in tests.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:19092"}), logger)
	events := event.NewProducer(producer, logger)

	storefront := service.NewStorefront(sc, sessions, events, logger)

	renderer, err := render.New()
	require.NoError(t, err)

	router := NewRouter(storefront, renderer, health.NewHandler("storefront"), logger, RouterConfig{
		AppName:    "Eike Studio",
		SessionTTL: time.Hour,
		PprofCIDRs: []string{"127.0.0.1/32"},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		server:   server,
		client:   &http.Client{Jar: jar},
		commerce: sc,
		sessions: sessions,
	}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (e *testEnv) postForm(t *testing.T, path, referer string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func catalogStub() *stubCommerce {
	return &stubCommerce{
		collections: []domain.Collection{
			{ID: "c1", Name: "Stools", Slug: "stools"},
			{ID: "c2", Name: "Lamps", Slug: "lamps"},
		},
		product: &domain.Product{
			ID:   "p1",
			Name: "Oak Stool",
			Slug: "oak-stool",
			FeaturedAsset: &domain.Asset{
				ID: "feat", Preview: "https://img.test/feat.jpg",
			},
			Variants: []domain.Variant{
				{ID: "v1", Name: "Small", SKU: "OAK-S", PriceWithTax: 49900, CurrencyCode: "NOK", StockLevel: domain.StockInStock},
				{ID: "v2", Name: "Large", SKU: "OAK-L", PriceWithTax: 59900, CurrencyCode: "NOK", StockLevel: domain.StockLowStock},
			},
		},
	}
}

func TestHome(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Eike Studio")
	assert.Contains(t, body, `href="/collections/stools"`)
}

func TestSessionCookie(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, _ := env.get(t, "/")
	var sid string
	for _, c := range resp.Cookies() {
		if c.Name == "eike_session" {
			sid = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, sid, "first visit must mint a session cookie")

	// The cookie jar sends it back; no new cookie is minted.
	resp, _ = env.get(t, "/")
	for _, c := range resp.Cookies() {
		assert.NotEqual(t, "eike_session", c.Name, "existing session must be reused")
	}
}

func TestProductPage(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, body := env.get(t, "/products/oak-stool")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Oak Stool - Eike Studio</title>")
	// Two variants, nothing requested: the shopper must choose.
	assert.Contains(t, body, "Choose a variant")
	assert.Contains(t, body, "disabled")
}

func TestProductPage_VariantSelected(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	_, body := env.get(t, "/products/oak-stool?variant=v2")
	assert.Contains(t, body, "NOK 599.00")
	assert.Contains(t, body, "OAK-L")
	assert.Contains(t, body, "Low stock")
	assert.Contains(t, body, `name="variantId" value="v2"`)
}

func TestProductPage_NotFound(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, body := env.get(t, "/products/no-such-thing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestCollectionPage(t *testing.T) {
	sc := catalogStub()
	sc.collection = &domain.Collection{
		ID: "c1", Name: "Stools", Slug: "stools",
		Products: []domain.ProductPreview{
			{ID: "p1", Name: "Oak Stool", Slug: "oak-stool"},
		},
	}
	env := newTestEnv(t, sc)

	resp, body := env.get(t, "/collections/stools")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Stools</h1>")
	assert.Contains(t, body, `href="/products/oak-stool"`)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, body := env.get(t, "/checkout")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, body := env.get(t, "/static/css/storefront.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ".site-header")
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp, _ := env.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.get(t, "/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCartSubmit_Success(t *testing.T) {
	sc := catalogStub()
	sc.addResult = commerce.AddItemResult{Order: &domain.ActiveOrder{ID: "o1", Code: "ABC", TotalQuantity: 2}}
	sc.addToken = "tok-rotated"
	env := newTestEnv(t, sc)

	// Establish the session first so the rotated token lands somewhere
	// observable.
	env.get(t, "/products/oak-stool")

	env.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp := env.postForm(t, "/api/active-order", env.server.URL+"/products/oak-stool?variant=v1", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"2"},
	})

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/products/oak-stool?variant=v1", resp.Header.Get("Location"))
	assert.Equal(t, "v1", sc.lastVariant)
	assert.Equal(t, 2, sc.lastQty)
}

func TestCartSubmit_RejectionSurfacesOnceOnNextPage(t *testing.T) {
	sc := catalogStub()
	sc.addResult = commerce.AddItemResult{
		Err: &domain.OrderError{Code: domain.ErrCodeInsufficientStock, Message: "Not enough stock"},
	}
	env := newTestEnv(t, sc)

	resp := env.postForm(t, "/api/active-order", env.server.URL+"/products/oak-stool", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"99"},
	})
	// The client followed the redirect back to the product page, which
	// consumed the error slot and rendered the banner.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := env.get(t, "/products/oak-stool")
	assert.NotContains(t, body, "Not enough stock", "error slot is one-shot")
}

func TestCartSubmit_RejectionBannerContent(t *testing.T) {
	sc := catalogStub()
	sc.addResult = commerce.AddItemResult{
		Err: &domain.OrderError{Code: domain.ErrCodeOrderLimit, Message: "Order limit reached"},
	}
	env := newTestEnv(t, sc)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/active-order",
		strings.NewReader(url.Values{
			"action":    {"addItemToOrder"},
			"variantId": {"v1"},
			"quantity":  {"1"},
		}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", env.server.URL+"/products/oak-stool")

	resp, err := env.client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Order limit reached")
}

func TestCartSubmit_BadAction(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp := env.postForm(t, "/api/active-order", "", url.Values{
		"action":    {"removeItem"},
		"variantId": {"v1"},
		"quantity":  {"1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.commerce.addCalls)
}

func TestCartSubmit_NoVariantRedirectsBack(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	env.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp := env.postForm(t, "/api/active-order", env.server.URL+"/products/oak-stool", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {""},
		"quantity":  {"1"},
	})

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/products/oak-stool", resp.Header.Get("Location"))
	assert.Zero(t, env.commerce.addCalls, "nothing selected means no backend request")
}

func TestCartSubmit_BadQuantity(t *testing.T) {
	env := newTestEnv(t, catalogStub())

	resp := env.postForm(t, "/api/active-order", "", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"lots"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.postForm(t, "/api/active-order", "", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"0"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.commerce.addCalls)
}

func TestCartSubmit_UntrustedRefererFallsBackToHome(t *testing.T) {
	sc := catalogStub()
	sc.addResult = commerce.AddItemResult{Order: &domain.ActiveOrder{}}
	env := newTestEnv(t, sc)

	env.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp := env.postForm(t, "/api/active-order", "https://evil.example/", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"1"},
	})

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestActiveOrderJSON(t *testing.T) {
	sc := catalogStub()
	sc.activeOrder = &domain.ActiveOrder{ID: "o1", Code: "ABC", TotalQuantity: 3}
	env := newTestEnv(t, sc)

	// No token yet: the endpoint reports no open order.
	resp, body := env.get(t, "/api/active-order")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null\n", body)

	// With a cart established the order comes back as JSON.
	sc.addResult = commerce.AddItemResult{Order: sc.activeOrder}
	sc.addToken = "tok"
	env.postForm(t, "/api/active-order", "", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"1"},
	})

	resp, body = env.get(t, "/api/active-order")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Contains(t, body, `"code":"ABC"`)
}

func TestCartBadgeAcrossPages(t *testing.T) {
	sc := catalogStub()
	sc.activeOrder = &domain.ActiveOrder{TotalQuantity: 4, Lines: []domain.OrderLine{{VariantID: "v1", Quantity: 4}}}
	sc.addResult = commerce.AddItemResult{Order: sc.activeOrder}
	sc.addToken = "tok"
	env := newTestEnv(t, sc)

	env.postForm(t, "/api/active-order", "", url.Values{
		"action":    {"addItemToOrder"},
		"variantId": {"v1"},
		"quantity":  {"4"},
	})

	_, body := env.get(t, "/")
	assert.Contains(t, body, `<span class="cart-badge">4</span>`)

	_, body = env.get(t, "/products/oak-stool?variant=v1")
	assert.Contains(t, body, "(4 in cart)")
}
