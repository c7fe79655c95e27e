package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuarts/takeout-app/hub"
	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/store"
)

type fakeGateway struct {
	intent *PaymentIntent
	err    error
	calls  int
}

func (f *fakeGateway) Pay(ctx context.Context, orderNumber string, amount float64, description, payerID string) (*PaymentIntent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &PaymentIntent{NonceStr: "nonce", PaySign: "sign"}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{}, &models.AddressBook{}, &models.ShoppingCart{},
		&models.Order{}, &models.OrderDetail{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

type fixture struct {
	db      *gorm.DB
	svc     *OrderService
	hub     *hub.Hub
	gateway *fakeGateway
	user    models.User
	address models.AddressBook
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	h := hub.New()
	gw := &fakeGateway{}
	svc := NewOrderService(store.New(db), h, gw)

	f := &fixture{db: db, svc: svc, hub: h, gateway: gw}
	f.user = models.User{Username: "alice", Password: "x", Role: models.RoleCustomer, PayerID: "payer-1"}
	db.Create(&f.user)
	f.address = models.AddressBook{UserID: f.user.ID, Consignee: "Alice", Phone: "13800000000", Detail: "1 Main St"}
	db.Create(&f.address)
	return f
}

func (f *fixture) seedCart(t *testing.T) {
	t.Helper()
	entries := []models.ShoppingCart{
		{UserID: f.user.ID, Name: "Kung Pao Chicken", Number: 2, Amount: 12.5},
		{UserID: f.user.ID, Name: "Rice", Flavor: "plain", Number: 1, Amount: 2.0},
	}
	if err := f.db.Create(&entries).Error; err != nil {
		panic(err)
	}
}

func (f *fixture) submit(t *testing.T) *models.Order {
	t.Helper()
	f.seedCart(t)
	order, err := f.svc.Submit(f.user.ID, f.address.ID, "")
	assert.NoError(t, err)
	return order
}

// forceStatus moves an order directly into a status, bypassing guards,
// to arrange a starting point for a test.
func (f *fixture) forceStatus(t *testing.T, orderID uint, status models.OrderStatus) {
	t.Helper()
	err := f.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error
	assert.NoError(t, err)
}

func (f *fixture) reload(t *testing.T, orderID uint) models.Order {
	t.Helper()
	var order models.Order
	assert.NoError(t, f.db.First(&order, orderID).Error)
	return order
}

func (f *fixture) observe() chan []byte {
	ch := make(chan []byte, 16)
	f.hub.Register("test-observer", ch)
	return ch
}

func TestSubmitOrder(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)

	assert.NotZero(t, order.ID)
	assert.NotEmpty(t, order.Number)
	assert.Equal(t, models.StatusPendingPayment, order.Status)
	assert.Equal(t, models.PayStatusUnpaid, order.PayStatus)
	assert.InDelta(t, 27.0, order.Amount, 0.001)
	assert.Equal(t, "Alice", order.Consignee)
	assert.Equal(t, "1 Main St", order.Address)
	assert.False(t, order.OrderTime.IsZero())

	var details []models.OrderDetail
	f.db.Where("order_id = ?", order.ID).Find(&details)
	assert.Len(t, details, 2)

	var cartCount int64
	f.db.Model(&models.ShoppingCart{}).Where("user_id = ?", f.user.ID).Count(&cartCount)
	assert.Zero(t, cartCount, "cart must be cleared on submission")
}

func TestSubmitOrderEmptyCart(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Submit(f.user.ID, f.address.ID, "")
	assert.ErrorIs(t, err, models.ErrCartEmpty)

	var orderCount, detailCount int64
	f.db.Model(&models.Order{}).Count(&orderCount)
	f.db.Model(&models.OrderDetail{}).Count(&detailCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, detailCount)
}

func TestSubmitOrderMissingAddress(t *testing.T) {
	f := setupService(t)
	f.seedCart(t)

	_, err := f.svc.Submit(f.user.ID, 9999, "")
	assert.ErrorIs(t, err, models.ErrAddressBookEmpty)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	ch := f.observe()

	assert.NoError(t, f.svc.ConfirmPayment(order.Number))

	paid := f.reload(t, order.ID)
	assert.Equal(t, models.StatusToBeConfirmed, paid.Status)
	assert.Equal(t, models.PayStatusPaid, paid.PayStatus)
	assert.NotNil(t, paid.CheckoutTime)
	firstCheckout := *paid.CheckoutTime

	assert.Len(t, ch, 1)
	msg := <-ch
	assert.Contains(t, string(msg), `"type":1`)
	assert.Contains(t, string(msg), order.Number)

	// A gateway retry must be a safe no-op.
	assert.NoError(t, f.svc.ConfirmPayment(order.Number))

	again := f.reload(t, order.ID)
	assert.Equal(t, models.PayStatusPaid, again.PayStatus)
	assert.True(t, firstCheckout.Equal(*again.CheckoutTime), "checkout time must not move on retry")
	assert.Len(t, ch, 0, "retry must not broadcast a second event")
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	f := setupService(t)
	err := f.svc.ConfirmPayment("no-such-number")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestCancelPendingOrder(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)

	assert.NoError(t, f.svc.Cancel(order.ID, f.user.ID))

	cancelled := f.reload(t, order.ID)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, models.CancelReasonByCustomer, cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelTime)
}

func TestCancelAfterConfirmationRejected(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusConfirmed)

	err := f.svc.Cancel(order.ID, f.user.ID)
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)
	assert.Equal(t, models.StatusConfirmed, f.reload(t, order.ID).Status)
}

func TestCancelForeignOrder(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)

	err := f.svc.Cancel(order.ID, f.user.ID+1)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestConfirmWinsOverCancel(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusToBeConfirmed)

	// The merchant confirms first; the customer's cancel arrives a
	// moment later and must lose cleanly.
	assert.NoError(t, f.svc.Confirm(order.ID, 99))
	err := f.svc.Cancel(order.ID, f.user.ID)
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)

	assert.Equal(t, models.StatusConfirmed, f.reload(t, order.ID).Status)
}

func TestCancelWinsOverConfirm(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusToBeConfirmed)

	assert.NoError(t, f.svc.Cancel(order.ID, f.user.ID))
	err := f.svc.Confirm(order.ID, 99)
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)

	assert.Equal(t, models.StatusCancelled, f.reload(t, order.ID).Status)
}

func TestConcurrentConfirmAndCancel(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusToBeConfirmed)

	// One connection keeps sqlite from rejecting the overlapping writes;
	// both callers still race through the service concurrently.
	sqlDB, err := f.db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	var confirmErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		confirmErr = f.svc.Confirm(order.ID, 99)
	}()
	go func() {
		defer wg.Done()
		cancelErr = f.svc.Cancel(order.ID, f.user.ID)
	}()
	wg.Wait()

	// Exactly one writer wins, the other sees the conflict.
	final := f.reload(t, order.ID).Status
	if confirmErr == nil {
		assert.ErrorIs(t, cancelErr, models.ErrOrderStatusConflict)
		assert.Equal(t, models.StatusConfirmed, final)
	} else {
		assert.ErrorIs(t, confirmErr, models.ErrOrderStatusConflict)
		assert.NoError(t, cancelErr)
		assert.Equal(t, models.StatusCancelled, final)
	}
}

func TestConfirmRequiresToBeConfirmed(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)

	err := f.svc.Confirm(order.ID, 99)
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)
	assert.Equal(t, models.StatusPendingPayment, f.reload(t, order.ID).Status)
}

func TestRejectOrder(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusToBeConfirmed)

	assert.NoError(t, f.svc.Reject(order.ID, 99, "out of stock"))

	rejected := f.reload(t, order.ID)
	assert.Equal(t, models.StatusCancelled, rejected.Status)
	assert.Equal(t, "out of stock", rejected.RejectionReason)
	assert.NotNil(t, rejected.CancelTime)
}

func TestRejectRequiresToBeConfirmed(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusDeliveryInProgress)

	err := f.svc.Reject(order.ID, 99, "too late")
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)
}

func TestAdminCancelIgnoresStatus(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusDeliveryInProgress)

	assert.NoError(t, f.svc.AdminCancel(order.ID, 99, "customer unreachable"))

	cancelled := f.reload(t, order.ID)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "customer unreachable", cancelled.CancelReason)
}

func TestAdminCancelUnknownOrder(t *testing.T) {
	f := setupService(t)
	err := f.svc.AdminCancel(12345, 99, "whatever")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestDispatchRequiresConfirmed(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusToBeConfirmed)

	err := f.svc.Dispatch(order.ID, 99)
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)
	assert.Equal(t, models.StatusToBeConfirmed, f.reload(t, order.ID).Status)
}

func TestDispatchAndComplete(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusConfirmed)

	assert.NoError(t, f.svc.Dispatch(order.ID, 99))
	assert.Equal(t, models.StatusDeliveryInProgress, f.reload(t, order.ID).Status)

	assert.NoError(t, f.svc.Complete(order.ID, 99))
	completed := f.reload(t, order.ID)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.DeliveryTime)
}

func TestCompleteRequiresDelivery(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusConfirmed)

	err := f.svc.Complete(order.ID, 99)
	assert.ErrorIs(t, err, models.ErrOrderStatusConflict)
}

func TestRemindBroadcastsWithoutMutation(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.forceStatus(t, order.ID, models.StatusToBeConfirmed)
	ch := f.observe()

	assert.NoError(t, f.svc.Remind(order.ID, f.user.ID))

	assert.Len(t, ch, 1)
	msg := <-ch
	assert.Contains(t, string(msg), `"type":2`)
	assert.Contains(t, string(msg), order.Number)
	assert.Equal(t, models.StatusToBeConfirmed, f.reload(t, order.ID).Status)
}

func TestRequestPayment(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)

	intent, err := f.svc.RequestPayment(context.Background(), order.Number, f.user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "sign", intent.PaySign)
	assert.Equal(t, 1, f.gateway.calls)

	// Requesting payment never mutates the order.
	assert.Equal(t, models.StatusPendingPayment, f.reload(t, order.ID).Status)
}

func TestRequestPaymentAlreadySettled(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.gateway.intent = &PaymentIntent{Code: CodeOrderPaid}

	_, err := f.svc.RequestPayment(context.Background(), order.Number, f.user.ID)
	assert.ErrorIs(t, err, models.ErrOrderAlreadyPaid)
}

func TestRequestPaymentGatewayDown(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	f.gateway.err = errors.New("connection refused")

	_, err := f.svc.RequestPayment(context.Background(), order.Number, f.user.ID)
	assert.ErrorIs(t, err, models.ErrPaymentGateway)
}

func TestRequestPaymentUnknownOrder(t *testing.T) {
	f := setupService(t)
	_, err := f.svc.RequestPayment(context.Background(), "missing", f.user.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestBatchTimeoutTransitionExcludesMovedRows(t *testing.T) {
	f := setupService(t)
	stale := f.submit(t)
	moved := f.submit(t)

	old := time.Now().Add(-20 * time.Minute)
	f.db.Model(&models.Order{}).Where("id IN ?", []uint{stale.ID, moved.ID}).Update("order_time", old)

	// One of the stale orders is cancelled by its customer just before
	// the sweep; the batch must not touch it again.
	assert.NoError(t, f.svc.Cancel(moved.ID, f.user.ID))

	rows, err := f.svc.BatchTimeoutTransition(
		models.StatusPendingPayment, time.Now().Add(-15*time.Minute),
		models.StatusCancelled, models.CancelReasonTimeout,
	)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	swept := f.reload(t, stale.ID)
	assert.Equal(t, models.StatusCancelled, swept.Status)
	assert.Equal(t, models.CancelReasonTimeout, swept.CancelReason)

	untouched := f.reload(t, moved.ID)
	assert.Equal(t, models.CancelReasonByCustomer, untouched.CancelReason)
}

func TestConfirmPaymentAfterCancellationIsNoOp(t *testing.T) {
	f := setupService(t)
	order := f.submit(t)
	ch := f.observe()

	assert.NoError(t, f.svc.Cancel(order.ID, f.user.ID))

	// A settlement notice arriving after the cancellation must not pull
	// the order out of its terminal state.
	assert.NoError(t, f.svc.ConfirmPayment(order.Number))

	after := f.reload(t, order.ID)
	assert.Equal(t, models.StatusCancelled, after.Status)
	assert.Equal(t, models.PayStatusUnpaid, after.PayStatus)
	assert.Len(t, ch, 0)
}
