package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	payload := map[string]any{"variant_id": "42", "quantity": 1}

	e, err := NewEvent("storefront.cart.item_added", "42", "order", "storefront", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, "storefront.cart.item_added", e.EventType)
	assert.Equal(t, "42", e.AggregateID)
	assert.Equal(t, "order", e.AggregateType)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "storefront", e.Source)
	assert.False(t, e.Timestamp.IsZero())

	var decoded map[string]any
	require.NoError(t, e.UnmarshalData(&decoded))
	assert.Equal(t, "42", decoded["variant_id"])
}

func TestEvent_WithCorrelationID(t *testing.T) {
	e, err := NewEvent("storefront.product.viewed", "p1", "product", "storefront", nil)
	require.NoError(t, err)

	e.WithCorrelationID("corr-9")
	assert.Equal(t, "corr-9", e.CorrelationID)

	data, err := e.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "corr-9")
}
