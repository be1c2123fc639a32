package domain

// Order mutation error codes returned by the commerce API.
const (
	ErrCodeOrderModification = "ORDER_MODIFICATION_ERROR"
	ErrCodeOrderLimit        = "ORDER_LIMIT_ERROR"
	ErrCodeNegativeQuantity  = "NEGATIVE_QUANTITY_ERROR"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK_ERROR"
)

// OrderError is a business-rule failure returned by the order API, distinct
// from transport failures.
type OrderError struct {
	Code    string `json:"errorCode"`
	Message string `json:"message"`
}

// UserMessage returns the message to show the shopper. Only the known order
// mutation codes are surfaced verbatim; any other code yields "" and the
// failure stays invisible at this layer.
func (e *OrderError) UserMessage() string {
	if e == nil || e.Code == "" {
		return ""
	}
	switch e.Code {
	case ErrCodeOrderModification,
		ErrCodeOrderLimit,
		ErrCodeNegativeQuantity,
		ErrCodeInsufficientStock:
		return e.Message
	}
	return ""
}
