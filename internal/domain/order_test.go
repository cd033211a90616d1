package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_Status(t *testing.T) {
	tests := []struct {
		name        string
		isPaid      bool
		isDelivered bool
		want        OrderStatus
	}{
		{"new order", false, false, StatusPending},
		{"paid", true, false, StatusPaid},
		{"delivered and paid", true, true, StatusDelivered},
		{"delivered without payment flag", false, true, StatusDelivered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{IsPaid: tt.isPaid, IsDelivered: tt.isDelivered}
			assert.Equal(t, tt.want, o.Status())
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	assert.Equal(t, StatusDelivered, ParseOrderStatus(" Delivered "))
	assert.Equal(t, StatusPaid, ParseOrderStatus("PAID"))
	assert.Equal(t, OrderStatus("shipped"), ParseOrderStatus("Shipped"))
}

func TestOrderUser_UnmarshalJSON(t *testing.T) {
	var populated Order
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"o1","user":{"_id":"u1","name":"Ann","email":"ann@example.com"}}`), &populated))
	assert.Equal(t, OrderUser{ID: "u1", Name: "Ann", Email: "ann@example.com"}, populated.User)

	var bare Order
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"o2","user":"u2"}`), &bare))
	assert.Equal(t, "u2", bare.User.ID)
	assert.Empty(t, bare.User.Name)

	var missing Order
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"o3","user":null}`), &missing))
	assert.Empty(t, missing.User.ID)
}

func TestOrder_ItemCount(t *testing.T) {
	o := Order{OrderItems: []OrderItem{{Name: "Mouse", Qty: 2}, {Name: "Pad", Qty: 3}}}
	assert.Equal(t, 5, o.ItemCount())
}
