package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_price"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// Reference returns the short label printed on kitchen tickets.
func (o *Order) Reference() string {
	return fmt.Sprintf("ORD-%06d", o.ID)
}

// ItemCount sums the quantities of every line.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
