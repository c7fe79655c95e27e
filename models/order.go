package models

import (
	"time"
)

// OrderStatus is the lifecycle status of an order. The numeric values
// double as the rank used for guard checks: the forward chain
// PendingPayment..Completed is strictly increasing, Cancelled sits
// outside the chain and is terminal.
type OrderStatus int

const (
	StatusPendingPayment OrderStatus = iota + 1
	StatusToBeConfirmed
	StatusConfirmed
	StatusDeliveryInProgress
	StatusCompleted
	StatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPendingPayment:
		return "pending_payment"
	case StatusToBeConfirmed:
		return "to_be_confirmed"
	case StatusConfirmed:
		return "confirmed"
	case StatusDeliveryInProgress:
		return "delivery_in_progress"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether no transition leaves this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CancellableByCustomer reports whether a customer may still cancel an
// order in this status. Once the merchant has confirmed the order the
// self-cancel path is closed.
func (s OrderStatus) CancellableByCustomer() bool {
	return s == StatusPendingPayment || s == StatusToBeConfirmed
}

// PayStatus is the payment settlement state of an order.
type PayStatus int

const (
	PayStatusUnpaid PayStatus = iota
	PayStatusPaid
	PayStatusRefunded
)

// Cancel reasons written by the lifecycle manager itself. Merchant
// rejection and admin cancellation carry free-text reasons instead.
const (
	CancelReasonByCustomer = "customer cancelled"
	CancelReasonTimeout    = "timed out, auto-cancelled"
)

type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	UserID uint   `gorm:"index;not null" json:"user_id"`

	Status    OrderStatus `gorm:"not null;default:1" json:"status"`
	PayStatus PayStatus   `gorm:"not null;default:0" json:"pay_status"`
	Amount    float64     `gorm:"type:decimal(10,2);not null" json:"amount"`

	// Delivery address snapshot, copied from the address book at
	// submission time and immutable afterward.
	Consignee string `gorm:"type:varchar(32)" json:"consignee"`
	Phone     string `gorm:"type:varchar(20)" json:"phone"`
	Address   string `gorm:"type:varchar(255)" json:"address"`

	Remark string `gorm:"type:varchar(100)" json:"remark,omitempty"`

	OrderTime       time.Time  `gorm:"index;not null" json:"order_time"`
	CheckoutTime    *time.Time `json:"checkout_time,omitempty"`
	CancelTime      *time.Time `json:"cancel_time,omitempty"`
	DeliveryTime    *time.Time `json:"delivery_time,omitempty"`
	CancelReason    string     `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	RejectionReason string     `gorm:"type:varchar(255)" json:"rejection_reason,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreateUser uint      `json:"-"`
	UpdateUser uint      `json:"-"`

	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID" json:"order_details,omitempty"`
}

// ApplyAuditStamp implements Auditable.
func (o *Order) ApplyAuditStamp(actorID uint, op AuditOp, at time.Time) {
	if op == AuditInsert {
		o.CreatedAt = at
		o.CreateUser = actorID
	}
	o.UpdatedAt = at
	o.UpdateUser = actorID
}
