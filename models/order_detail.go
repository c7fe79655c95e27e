package models

import "time"

// OrderDetail is one line of an order, copied from a shopping cart
// entry at submission. Lines are created in a single batch and never
// mutated afterward; they are deleted only together with their order.
type OrderDetail struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"index;not null" json:"order_id"`

	Name   string  `gorm:"type:varchar(64);not null" json:"name"`
	Flavor string  `gorm:"type:varchar(64)" json:"flavor,omitempty"`
	Number int     `gorm:"not null" json:"number"`
	Amount float64 `gorm:"type:decimal(10,2);not null" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}
