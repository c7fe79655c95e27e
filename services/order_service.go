package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/danuarts/takeout-app/hub"
	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/utils"
)

// Store is the persistence surface the lifecycle manager needs. The
// GORM implementation lives in the store package.
type Store interface {
	SubmitOrder(order *models.Order, cart []models.ShoppingCart) error
	GetOrderByID(id uint) (*models.Order, error)
	GetOrderByNumber(number string) (*models.Order, error)
	UpdateOrderStatusIf(actorID, id uint, expect models.OrderStatus, patch models.Order) (int64, error)
	UpdateOrder(actorID, id uint, patch models.Order) error
	MarkOrderPaid(number string, patch models.Order) (int64, error)
	BatchTransition(from models.OrderStatus, olderThan time.Time, patch models.Order) (int64, error)
	GetDetailsByOrderID(orderID uint) ([]models.OrderDetail, error)
	PageQueryOrders(filter models.OrderPageFilter) ([]models.Order, int64, error)
	CountOrdersByStatus(status models.OrderStatus) (int64, error)
	ListCart(userID uint) ([]models.ShoppingCart, error)
	InsertCartBatch(entries []models.ShoppingCart) error
	GetAddressBookByID(id uint) (*models.AddressBook, error)
	GetUserByID(id uint) (*models.User, error)
}

// OrderService is the single authority for order state changes. Every
// trigger, customer actions, gateway callbacks, merchant actions and
// the timeout scheduler, funnels through it. Guarded transitions are
// executed as conditional updates against the store so that concurrent
// actors on the same order cannot corrupt its status: exactly one
// writer wins, the loser gets ErrOrderStatusConflict.
type OrderService struct {
	store   Store
	hub     *hub.Hub
	gateway PaymentGateway
}

func NewOrderService(store Store, h *hub.Hub, gateway PaymentGateway) *OrderService {
	return &OrderService{store: store, hub: h, gateway: gateway}
}

// Submit creates an order from the caller's shopping cart. The cart is
// copied into immutable detail lines and cleared in the same
// transaction. The new order starts in PENDING_PAYMENT / UNPAID.
func (s *OrderService) Submit(userID, addressBookID uint, remark string) (*models.Order, error) {
	address, err := s.store.GetAddressBookByID(addressBookID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.ListCart(userID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, models.ErrCartEmpty
	}

	var amount float64
	for _, entry := range cart {
		amount += entry.Amount * float64(entry.Number)
	}

	order := &models.Order{
		Number:    newOrderNumber(),
		UserID:    userID,
		Status:    models.StatusPendingPayment,
		PayStatus: models.PayStatusUnpaid,
		Amount:    amount,
		Consignee: address.Consignee,
		Phone:     address.Phone,
		Address:   address.Detail,
		Remark:    remark,
		OrderTime: time.Now(),
	}

	if err := s.store.SubmitOrder(order, cart); err != nil {
		return nil, err
	}
	return order, nil
}

// RequestPayment asks the gateway for a payable intent. It never
// mutates the order: settlement arrives asynchronously through
// ConfirmPayment.
func (s *OrderService) RequestPayment(ctx context.Context, orderNumber string, userID uint) (*PaymentIntent, error) {
	order, err := s.store.GetOrderByNumber(orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrOrderNotFound
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.Pay(ctx, order.Number, order.Amount, "takeout order", user.PayerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPaymentGateway, err)
	}
	if intent.Code == CodeOrderPaid {
		return nil, models.ErrOrderAlreadyPaid
	}
	return intent, nil
}

// ConfirmPayment is the gateway-callback entry point, safe to invoke
// any number of times for the same order number. The first call
// settles the order and notifies the dashboards; every retry is a
// no-op. Idempotence is decided by reading the pay status up front,
// not by conditional-update failure.
func (s *OrderService) ConfirmPayment(orderNumber string) error {
	order, err := s.store.GetOrderByNumber(orderNumber)
	if err != nil {
		return err
	}
	if order.PayStatus == models.PayStatusPaid {
		return nil
	}

	now := time.Now()
	rows, err := s.store.MarkOrderPaid(orderNumber, models.Order{
		Status:       models.StatusToBeConfirmed,
		PayStatus:    models.PayStatusPaid,
		CheckoutTime: &now,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		// A concurrent retry settled the order first and already
		// broadcast the event.
		return nil
	}

	s.hub.Broadcast(hub.Message{
		Type:    hub.TypeNewOrder,
		OrderID: order.ID,
		Content: "order number: " + order.Number,
	})
	return nil
}

// Cancel is the customer-initiated cancellation. Orders past
// TO_BE_CONFIRMED can no longer be self-cancelled.
func (s *OrderService) Cancel(orderID, userID uint) error {
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return models.ErrOrderNotFound
	}
	if !order.Status.CancellableByCustomer() {
		return models.ErrOrderStatusConflict
	}

	now := time.Now()
	return s.transition(userID, orderID, order.Status, models.Order{
		Status:       models.StatusCancelled,
		CancelReason: models.CancelReasonByCustomer,
		CancelTime:   &now,
	})
}

// Confirm is the merchant accepting an order.
func (s *OrderService) Confirm(orderID, adminID uint) error {
	return s.transition(adminID, orderID, models.StatusToBeConfirmed, models.Order{
		Status: models.StatusConfirmed,
	})
}

// Reject is the merchant declining an order waiting for confirmation.
func (s *OrderService) Reject(orderID, adminID uint, reason string) error {
	now := time.Now()
	return s.transition(adminID, orderID, models.StatusToBeConfirmed, models.Order{
		Status:          models.StatusCancelled,
		RejectionReason: reason,
		CancelTime:      &now,
	})
}

// AdminCancel cancels an order in any status. The only requirement is
// that the order exists.
func (s *OrderService) AdminCancel(orderID, adminID uint, reason string) error {
	if _, err := s.store.GetOrderByID(orderID); err != nil {
		return err
	}
	now := time.Now()
	return s.store.UpdateOrder(adminID, orderID, models.Order{
		Status:       models.StatusCancelled,
		CancelReason: reason,
		CancelTime:   &now,
	})
}

// Dispatch moves a confirmed order out for delivery.
func (s *OrderService) Dispatch(orderID, adminID uint) error {
	return s.transition(adminID, orderID, models.StatusConfirmed, models.Order{
		Status: models.StatusDeliveryInProgress,
	})
}

// Complete marks a dispatched order as delivered.
func (s *OrderService) Complete(orderID, adminID uint) error {
	now := time.Now()
	return s.transition(adminID, orderID, models.StatusDeliveryInProgress, models.Order{
		Status:       models.StatusCompleted,
		DeliveryTime: &now,
	})
}

// Remind broadcasts a "customer is prompting" event. The order status
// is untouched.
func (s *OrderService) Remind(orderID, userID uint) error {
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return models.ErrOrderNotFound
	}

	s.hub.Broadcast(hub.Message{
		Type:    hub.TypeReminder,
		OrderID: order.ID,
		Content: "order number: " + order.Number,
	})
	return nil
}

// BatchTimeoutTransition advances every order stuck in from since
// before the cutoff. Used by the timeout scheduler; the status filter
// lives inside the batch UPDATE itself, so rows moved by a live actor
// in between are excluded rather than overwritten. Returns the number
// of orders advanced.
func (s *OrderService) BatchTimeoutTransition(from models.OrderStatus, olderThan time.Time, to models.OrderStatus, reason string) (int64, error) {
	now := time.Now()
	patch := models.Order{Status: to}
	switch to {
	case models.StatusCancelled:
		patch.CancelReason = reason
		patch.CancelTime = &now
	case models.StatusCompleted:
		patch.DeliveryTime = &now
	}

	rows, err := s.store.BatchTransition(from, olderThan, patch)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		utils.InfoLogger.Printf("batch transition %s -> %s moved %d orders", from, to, rows)
	}
	return rows, nil
}

// transition runs one guarded status change as a conditional update.
// Zero matched rows means the guard no longer holds, either because the
// order is gone or because a concurrent actor won the race.
func (s *OrderService) transition(actorID, orderID uint, expect models.OrderStatus, patch models.Order) error {
	rows, err := s.store.UpdateOrderStatusIf(actorID, orderID, expect, patch)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.store.GetOrderByID(orderID); err != nil {
			return err
		}
		return models.ErrOrderStatusConflict
	}
	return nil
}

func newOrderNumber() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
