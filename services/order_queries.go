package services

import (
	"strconv"
	"strings"

	"github.com/danuarts/takeout-app/models"
)

// OrderPageRecord is one row of the admin order listing, the order plus
// a flattened summary of its dishes.
type OrderPageRecord struct {
	models.Order
	OrderDishes string `json:"order_dishes"`
}

// GetOrderDetail returns the order with its detail lines.
func (s *OrderService) GetOrderDetail(orderID uint) (*models.Order, error) {
	return s.store.GetOrderByID(orderID)
}

// GetOrderDetailFor is the customer-side read: another user's order is
// indistinguishable from a missing one.
func (s *OrderService) GetOrderDetailFor(orderID, userID uint) (*models.Order, error) {
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// HistoryOrders pages through the caller's own orders, newest first.
func (s *OrderService) HistoryOrders(userID uint, page, pageSize int, status *models.OrderStatus) ([]models.Order, int64, error) {
	return s.store.PageQueryOrders(models.OrderPageFilter{
		UserID:   &userID,
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
}

// PageQuery is the admin-side conditional order search.
func (s *OrderService) PageQuery(filter models.OrderPageFilter) ([]OrderPageRecord, int64, error) {
	orders, total, err := s.store.PageQueryOrders(filter)
	if err != nil {
		return nil, 0, err
	}

	records := make([]OrderPageRecord, 0, len(orders))
	for _, order := range orders {
		records = append(records, OrderPageRecord{
			Order:       order,
			OrderDishes: dishSummary(order.OrderDetails),
		})
	}
	return records, total, nil
}

// Statistics counts the orders waiting on the merchant side.
func (s *OrderService) Statistics() (*models.OrderStatistics, error) {
	var stats models.OrderStatistics
	var err error
	if stats.ToBeConfirmed, err = s.store.CountOrdersByStatus(models.StatusToBeConfirmed); err != nil {
		return nil, err
	}
	if stats.Confirmed, err = s.store.CountOrdersByStatus(models.StatusConfirmed); err != nil {
		return nil, err
	}
	if stats.DeliveryInProgress, err = s.store.CountOrdersByStatus(models.StatusDeliveryInProgress); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Repetition copies a past order's detail lines back into the caller's
// shopping cart ("order again").
func (s *OrderService) Repetition(orderID, userID uint) error {
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return models.ErrOrderNotFound
	}

	details, err := s.store.GetDetailsByOrderID(orderID)
	if err != nil {
		return err
	}

	entries := make([]models.ShoppingCart, 0, len(details))
	for _, d := range details {
		entries = append(entries, models.ShoppingCart{
			UserID: userID,
			Name:   d.Name,
			Flavor: d.Flavor,
			Number: d.Number,
			Amount: d.Amount,
		})
	}
	return s.store.InsertCartBatch(entries)
}

func dishSummary(details []models.OrderDetail) string {
	var b strings.Builder
	for _, d := range details {
		b.WriteString(d.Name)
		b.WriteByte('*')
		b.WriteString(strconv.Itoa(d.Number))
		b.WriteByte(';')
	}
	return b.String()
}
