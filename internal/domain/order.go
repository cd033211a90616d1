package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// OrderStatus — производный статус заказа. В API не хранится.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus нормализует строку статуса. Неизвестные значения возвращаются как есть
// (в нижнем регистре) и ни с одним заказом не совпадут.
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Order описывает заказ из API магазина.
type Order struct {
	ID              string          `json:"_id"`
	User            OrderUser       `json:"user"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
}

// Status: delivered важнее paid, paid важнее pending.
func (o *Order) Status() OrderStatus {
	switch {
	case o.IsDelivered:
		return StatusDelivered
	case o.IsPaid:
		return StatusPaid
	default:
		return StatusPending
	}
}

// ItemCount — суммарное количество единиц товара в заказе.
func (o *Order) ItemCount() int {
	var n int
	for _, it := range o.OrderItems {
		n += it.Qty
	}
	return n
}

type OrderItem struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Image   string  `json:"image,omitempty"`
	Price   float64 `json:"price"`
	Product string  `json:"product,omitempty"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderUser — владелец заказа. API отдаёт либо вложенный объект, либо только идентификатор.
type OrderUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (u *OrderUser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &u.ID)
	}

	type plain OrderUser
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = OrderUser(p)
	return nil
}
