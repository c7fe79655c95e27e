package models

import "time"

// OrderPageFilter is the admin-side conditional paging query. Zero or
// nil fields are not applied.
type OrderPageFilter struct {
	Number    string
	Phone     string
	Status    *OrderStatus
	UserID    *uint
	BeginTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}

// OrderStatistics carries the dashboard counts of orders waiting on the
// merchant side.
type OrderStatistics struct {
	ToBeConfirmed      int64 `json:"to_be_confirmed"`
	Confirmed          int64 `json:"confirmed"`
	DeliveryInProgress int64 `json:"delivery_in_progress"`
}
