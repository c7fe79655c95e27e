package models

import "errors"

// Errors returned by the lifecycle manager. Controllers map them onto
// HTTP status codes with errors.Is.
var (
	// ErrAddressBookEmpty and ErrCartEmpty reject a submission whose
	// preconditions are not met.
	ErrAddressBookEmpty = errors.New("address book is empty")
	ErrCartEmpty        = errors.New("shopping cart is empty")

	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderStatusConflict covers both a failed guard check and a
	// conditional update that lost against a concurrent actor.
	ErrOrderStatusConflict = errors.New("order status does not allow this operation")

	ErrOrderAlreadyPaid = errors.New("order has already been paid")

	ErrPaymentGateway = errors.New("payment gateway request failed")
)
