package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks the hosted-payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order is the snapshot handed to the payments provider at checkout time.
// The cart clears only after the provider confirms the payment.
type Order struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID     string          `gorm:"column:session_id;not null;index"`
	Status        OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	Currency      string          `gorm:"column:currency;not null;default:'GBP'"`
	TotalItems    int             `gorm:"column:total_items;not null"`
	SubtotalPence int             `gorm:"column:subtotal_pence;not null"`
	PaymentID     *string         `gorm:"column:payment_id"`
	PaidAt        *time.Time      `gorm:"column:paid_at"`
	LineItems     []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
