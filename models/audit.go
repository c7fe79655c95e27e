package models

import "time"

// AuditOp tells an entity which kind of persistence write is about to
// happen so it can stamp its own audit fields.
type AuditOp int

const (
	AuditInsert AuditOp = iota
	AuditUpdate
)

// Auditable is implemented by every mutable entity. The store calls it
// at its write sites; entities set their own fields directly, there is
// no runtime field lookup involved.
type Auditable interface {
	ApplyAuditStamp(actorID uint, op AuditOp, at time.Time)
}
