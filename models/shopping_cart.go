package models

import "time"

// ShoppingCart is one row per item a user has added. The whole cart is
// consumed and cleared atomically when an order is submitted.
type ShoppingCart struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	Name   string  `gorm:"type:varchar(64);not null" json:"name"`
	Flavor string  `gorm:"type:varchar(64)" json:"flavor,omitempty"`
	Number int     `gorm:"not null;default:1" json:"number"`
	Amount float64 `gorm:"type:decimal(10,2);not null" json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}

// ApplyAuditStamp implements Auditable. Cart rows are insert-only.
func (sc *ShoppingCart) ApplyAuditStamp(actorID uint, op AuditOp, at time.Time) {
	if op == AuditInsert {
		sc.CreatedAt = at
	}
}

// ToOrderDetail copies the cart entry into an immutable order line.
func (sc *ShoppingCart) ToOrderDetail(orderID uint) OrderDetail {
	return OrderDetail{
		OrderID: orderID,
		Name:    sc.Name,
		Flavor:  sc.Flavor,
		Number:  sc.Number,
		Amount:  sc.Amount,
	}
}
