package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gnimmelf/eike-storefront/internal/service"
	apperrors "github.com/gnimmelf/eike-storefront/pkg/errors"
	"github.com/gnimmelf/eike-storefront/pkg/logger"
)

// actionAddItem is the only cart action the order endpoint accepts.
const actionAddItem = "addItemToOrder"

// CartHandler serves the active-order endpoint: form-posted cart submissions
// and a JSON view of the open order.
type CartHandler struct {
	storefront *service.Storefront
	logger     *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(storefront *service.Storefront, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		storefront: storefront,
		logger:     logger,
	}
}

// Submit serves POST /api/active-order. Success and domain rejections both
// redirect back to the originating page; the rejection message travels via
// the session's one-shot error slot and surfaces on the next render.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	if action := r.PostFormValue("action"); action != actionAddItem {
		http.Error(w, "unknown action "+strconv.Quote(action), http.StatusBadRequest)
		return
	}

	// A form posted with nothing selected has nothing to submit; send the
	// shopper back to pick a variant instead of erroring.
	variantID := r.PostFormValue("variantId")
	if variantID == "" {
		h.redirectBack(w, r)
		return
	}

	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		http.Error(w, "quantity must be a number", http.StatusBadRequest)
		return
	}

	input := service.AddToCartInput{
		VariantID: variantID,
		Quantity:  quantity,
	}

	result, err := h.storefront.AddToCart(r.Context(), SessionID(r.Context()), input)
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(r.Context()).ErrorContext(r.Context(), "cart submission failed",
				slog.Any("error", err),
			)
			http.Error(w, "cart submission failed", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	if result.Dropped {
		logger.FromContext(r.Context()).InfoContext(r.Context(), "duplicate cart submission dropped",
			slog.String("variant_id", input.VariantID),
		)
	}

	// Success, rejection and dropped duplicates all redirect back; the
	// rejection message rides the session and shows on the next render.
	h.redirectBack(w, r)
}

// ActiveOrder serves GET /api/active-order with the open order as JSON, or a
// JSON null when the session has no open order.
func (h *CartHandler) ActiveOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.storefront.ActiveOrder(r.Context(), SessionID(r.Context()))
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "active order fetch failed",
			slog.Any("error", err),
		)
		http.Error(w, "active order unavailable", apperrors.HTTPStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(order); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "encode active order failed",
			slog.Any("error", err),
		)
	}
}

// redirectBack sends the shopper to the page the form was posted from. Only
// the local path of the referrer is trusted; anything else lands on the front
// page.
func (h *CartHandler) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref := r.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			target = u.Path
			if u.RawQuery != "" {
				target += "?" + u.RawQuery
			}
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
