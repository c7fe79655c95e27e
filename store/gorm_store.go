package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/danuarts/takeout-app/models"
)

// GormStore is the persistence gateway backing the order lifecycle. It
// runs against MySQL in production and SQLite in tests; nothing here is
// dialect specific.
type GormStore struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// applyAudit stamps an entity right before a persistence write. The
// operation kind is passed explicitly so the entity knows whether to
// set its creation fields.
func applyAudit(actorID uint, op models.AuditOp, entities ...models.Auditable) {
	now := time.Now()
	for _, e := range entities {
		e.ApplyAuditStamp(actorID, op, now)
	}
}

// SubmitOrder inserts the order, copies the cart into detail lines and
// clears the cart, all in one transaction.
func (s *GormStore) SubmitOrder(order *models.Order, cart []models.ShoppingCart) error {
	applyAudit(order.UserID, models.AuditInsert, order)
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		details := make([]models.OrderDetail, 0, len(cart))
		for _, entry := range cart {
			details = append(details, entry.ToOrderDetail(order.ID))
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", order.UserID).Delete(&models.ShoppingCart{}).Error
	})
}

func (s *GormStore) GetOrderByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("OrderDetails").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) GetOrderByNumber(number string) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Where("number = ?", number).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatusIf applies patch only if the order is still in the
// expected status. The returned count is the number of rows matched:
// zero means a concurrent actor moved the order first.
func (s *GormStore) UpdateOrderStatusIf(actorID, id uint, expect models.OrderStatus, patch models.Order) (int64, error) {
	applyAudit(actorID, models.AuditUpdate, &patch)
	res := s.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expect).
		Updates(patch)
	return res.RowsAffected, res.Error
}

// MarkOrderPaid settles an order conditionally on it being still
// unpaid and awaiting payment, so a duplicate gateway callback, or a
// callback racing a cancellation, matches zero rows. Cancelled is an
// absorbing state; not even a settlement notice leaves it.
func (s *GormStore) MarkOrderPaid(number string, patch models.Order) (int64, error) {
	applyAudit(0, models.AuditUpdate, &patch)
	res := s.DB.Model(&models.Order{}).
		Where("number = ? AND pay_status = ? AND status = ?",
			number, models.PayStatusUnpaid, models.StatusPendingPayment).
		Updates(patch)
	return res.RowsAffected, res.Error
}

// BatchTransition advances every order still in from and older than the
// cutoff. The status filter sits in the same UPDATE as the write, so a
// row moved by a concurrent actor is silently excluded from the batch.
func (s *GormStore) BatchTransition(from models.OrderStatus, olderThan time.Time, patch models.Order) (int64, error) {
	applyAudit(0, models.AuditUpdate, &patch)
	res := s.DB.Model(&models.Order{}).
		Where("status = ? AND order_time < ?", from, olderThan).
		Updates(patch)
	return res.RowsAffected, res.Error
}

func (s *GormStore) GetDetailsByOrderID(orderID uint) ([]models.OrderDetail, error) {
	var details []models.OrderDetail
	err := s.DB.Where("order_id = ?", orderID).Find(&details).Error
	return details, err
}

// PageQueryOrders lists orders matching the filter, newest first.
func (s *GormStore) PageQueryOrders(filter models.OrderPageFilter) ([]models.Order, int64, error) {
	q := s.DB.Model(&models.Order{})
	if filter.Number != "" {
		q = q.Where("number LIKE ?", "%"+filter.Number+"%")
	}
	if filter.Phone != "" {
		q = q.Where("phone LIKE ?", "%"+filter.Phone+"%")
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.BeginTime != nil {
		q = q.Where("order_time >= ?", *filter.BeginTime)
	}
	if filter.EndTime != nil {
		q = q.Where("order_time <= ?", *filter.EndTime)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var orders []models.Order
	err := q.Preload("OrderDetails").
		Order("order_time DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

func (s *GormStore) CountOrdersByStatus(status models.OrderStatus) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (s *GormStore) ListCart(userID uint) ([]models.ShoppingCart, error) {
	var cart []models.ShoppingCart
	err := s.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&cart).Error
	return cart, err
}

func (s *GormStore) AddCartEntry(entry *models.ShoppingCart) error {
	applyAudit(entry.UserID, models.AuditInsert, entry)
	return s.DB.Create(entry).Error
}

func (s *GormStore) InsertCartBatch(entries []models.ShoppingCart) error {
	for i := range entries {
		applyAudit(entries[i].UserID, models.AuditInsert, &entries[i])
	}
	return s.DB.Create(&entries).Error
}

func (s *GormStore) ClearCart(userID uint) error {
	return s.DB.Where("user_id = ?", userID).Delete(&models.ShoppingCart{}).Error
}

func (s *GormStore) GetAddressBookByID(id uint) (*models.AddressBook, error) {
	var ab models.AddressBook
	if err := s.DB.First(&ab, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAddressBookEmpty
		}
		return nil, err
	}
	return &ab, nil
}

func (s *GormStore) CreateAddressBook(ab *models.AddressBook) error {
	applyAudit(ab.UserID, models.AuditInsert, ab)
	return s.DB.Create(ab).Error
}

func (s *GormStore) ListAddressBooks(userID uint) ([]models.AddressBook, error) {
	var books []models.AddressBook
	err := s.DB.Where("user_id = ?", userID).Find(&books).Error
	return books, err
}

func (s *GormStore) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateOrder applies patch unconditionally. Only the admin override
// path uses it; every guarded transition goes through
// UpdateOrderStatusIf instead.
func (s *GormStore) UpdateOrder(actorID, id uint, patch models.Order) error {
	applyAudit(actorID, models.AuditUpdate, &patch)
	return s.DB.Model(&models.Order{}).Where("id = ?", id).Updates(patch).Error
}
