// Package render owns the server-side HTML: embedded templates, the shared
// page chrome, and presentation helpers such as price formatting.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/gnimmelf/eike-storefront/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

// pageNames lists the renderable pages; each has its own template file
// layered on the shared layout and partials.
var pageNames = []string{"home", "collection", "product", "notfound", "error"}

// PageData is the envelope every template receives. Content carries the
// page-specific view; the rest is the shared chrome.
type PageData struct {
	Title          string
	AppName        string
	NavCollections []domain.Collection
	Order          *domain.ActiveOrder
	OrderError     *domain.OrderError
	Breadcrumbs    []domain.Breadcrumb
	Content        any
}

// ProductContent is the Content payload for the product detail page.
type ProductContent struct {
	Product   *domain.Product
	Selection domain.Selection
	InCartQty int
	// Quantities populates the quantity selector.
	Quantities []int
}

// CollectionContent is the Content payload for a collection listing page.
type CollectionContent struct {
	Collection *domain.Collection
}

// ErrorContent is the Content payload for the error and not-found pages.
type ErrorContent struct {
	Message string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. Parse failures are programmer errors and
// surface at startup, not per request.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"formatPrice": FormatPrice,
		"safeHTML":    func(s string) template.HTML { return template.HTML(s) },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.gohtml").Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.gohtml",
			"templates/partials/*.gohtml",
			"templates/"+name+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the named page into the response. The template runs against
// a buffer first so a mid-render failure never leaks half a page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a minor-unit amount with its currency code, e.g.
// 49900 "NOK" -> "NOK 499.00".
func FormatPrice(minorUnits int64, currencyCode string) string {
	amount := number.Decimal(float64(minorUnits)/100,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	)
	return pricePrinter.Sprintf("%s %v", currencyCode, amount)
}
