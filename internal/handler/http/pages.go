package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gnimmelf/eike-storefront/internal/domain"
	"github.com/gnimmelf/eike-storefront/internal/render"
	"github.com/gnimmelf/eike-storefront/internal/service"
	apperrors "github.com/gnimmelf/eike-storefront/pkg/errors"
	"github.com/gnimmelf/eike-storefront/pkg/logger"
)

// quantityChoices populates the quantity selector on the product page.
var quantityChoices = []int{1, 2, 3, 4, 5, 6, 7, 8}

// PageHandler serves the HTML storefront pages.
type PageHandler struct {
	storefront *service.Storefront
	renderer   *render.Renderer
	appName    string
	logger     *slog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(storefront *service.Storefront, renderer *render.Renderer, appName string, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		storefront: storefront,
		renderer:   renderer,
		appName:    appName,
		logger:     logger,
	}
}

// Home serves GET /.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	view, err := h.storefront.HomePage(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, http.StatusOK, "home", h.pageData(view.Shell, h.appName, nil))
}

// Product serves GET /products/{slug}. The variant and asset query parameters
// carry the page-local selection state across navigations.
func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	query := r.URL.Query()

	view, err := h.storefront.ProductPage(r.Context(), SessionID(r.Context()), slug,
		query.Get("variant"), query.Get("asset"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.pageData(view.Shell, domain.PageTitle(view.Product.Name, h.appName), &render.ProductContent{
		Product:    view.Product,
		Selection:  view.Selection,
		InCartQty:  view.InCartQty,
		Quantities: quantityChoices,
	})
	data.Breadcrumbs = view.Product.BreadcrumbTrail()

	h.renderPage(w, r, http.StatusOK, "product", data)
}

// Collection serves GET /collections/{slug}.
func (h *PageHandler) Collection(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	view, err := h.storefront.CollectionPage(r.Context(), SessionID(r.Context()), slug)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.pageData(view.Shell, domain.PageTitle(view.Collection.Name, h.appName), &render.CollectionContent{
		Collection: view.Collection,
	})
	data.Breadcrumbs = domain.VisibleBreadcrumbs(view.Collection.Breadcrumbs)

	h.renderPage(w, r, http.StatusOK, "collection", data)
}

// NotFound serves every unmatched route.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusNotFound, "notfound", &render.PageData{
		Title:   h.appName,
		AppName: h.appName,
		Content: &render.ErrorContent{Message: "We could not find the page you were looking for."},
	})
}

func (h *PageHandler) pageData(shell service.Shell, title string, content any) *render.PageData {
	return &render.PageData{
		Title:          title,
		AppName:        h.appName,
		NavCollections: shell.NavCollections,
		Order:          shell.Order,
		OrderError:     shell.OrderError,
		Content:        content,
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContext(r.Context())

	if errors.Is(err, apperrors.ErrNotFound) {
		l.InfoContext(r.Context(), "page not found", slog.String("path", r.URL.Path))
		h.NotFound(w, r)
		return
	}

	l.ErrorContext(r.Context(), "page render failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	h.renderPage(w, r, apperrors.HTTPStatus(err), "error", &render.PageData{
		Title:   h.appName,
		AppName: h.appName,
		Content: &render.ErrorContent{Message: "The store is having trouble right now. Please try again in a moment."},
	})
}

func (h *PageHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, data *render.PageData) {
	if err := h.renderer.Render(w, status, page, data); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "template render failed",
			slog.String("page", page),
			slog.Any("error", err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
