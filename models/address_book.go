package models

import "time"

// AddressBook is a delivery address saved by a user. Submit copies the
// consignee, phone and detail text onto the order as a snapshot.
type AddressBook struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	Consignee string `gorm:"type:varchar(32);not null" json:"consignee"`
	Phone     string `gorm:"type:varchar(20);not null" json:"phone"`
	Detail    string `gorm:"type:varchar(255);not null" json:"detail"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyAuditStamp implements Auditable.
func (ab *AddressBook) ApplyAuditStamp(actorID uint, op AuditOp, at time.Time) {
	if op == AuditInsert {
		ab.CreatedAt = at
	}
	ab.UpdatedAt = at
}
