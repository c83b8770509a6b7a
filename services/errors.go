package services

import "errors"

// ValidationError is a client mistake in the request; controllers answer 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrMissingRegisterFields = &ValidationError{Msg: "Name, email, and password are required"}
	ErrPasswordTooShort      = &ValidationError{Msg: "Password must be at least 6 characters long"}
	ErrMissingLoginFields    = &ValidationError{Msg: "Email and password are required"}

	ErrEmptyOrder              = &ValidationError{Msg: "Order must contain at least one item"}
	ErrInvalidQuantity         = &ValidationError{Msg: "Item quantity must be at least 1"}
	ErrInvalidOrderType        = &ValidationError{Msg: "Order type must be dine_in, takeaway or delivery"}
	ErrDeliveryAddressRequired = &ValidationError{Msg: "Delivery address is required for delivery orders"}
	ErrUnknownMenuItem         = &ValidationError{Msg: "Order contains an unknown menu item"}
	ErrItemUnavailable         = &ValidationError{Msg: "Order contains an unavailable menu item"}
	ErrInvalidStatus           = &ValidationError{Msg: "Unknown order status"}

	ErrEmailTaken         = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("order cannot move to that status")
)
