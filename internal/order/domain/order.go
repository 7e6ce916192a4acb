package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	UserID       *string         `json:"userId"`
	CustomerData CustomerData    `json:"customerData"`
	Items        []OrderItem     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// OrderItem references a product by id and category slug; there is no
// foreign key to the catalog tables.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Category  string          `json:"category"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number,omitempty"`
	Floor      string `json:"floor,omitempty"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Province   string `json:"province,omitempty"`
}

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentTransfer       PaymentMethod = "transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

type CustomerData struct {
	Name          string        `json:"name"`
	Surname       string        `json:"surname,omitempty"`
	Email         string        `json:"email,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Address       Address       `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// Pointers distinguish a missing field from a zero value.
type CreateOrderRequest struct {
	UserID       string           `json:"userId"`
	CustomerData *CustomerData    `json:"customerData"`
	Items        []OrderItem      `json:"items"`
	Total        *decimal.Decimal `json:"total"`
}

type OrderSummary struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Status Status `json:"status"`
}

type CreateOrderResponse struct {
	Message string       `json:"message"`
	Order   OrderSummary `json:"order"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateStatusResponse struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

type OrderCreatedEvent struct {
	OrderID string          `json:"orderId"`
	Code    string          `json:"code"`
	UserID  *string         `json:"userId"`
	Total   decimal.Decimal `json:"total"`
	Items   []OrderItem     `json:"items"`
}

type StatusChangedEvent struct {
	OrderID string `json:"orderId"`
	Code    string `json:"code"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
