package service

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrEmptyCart       = errors.New("cart is empty, nothing to place")
	ErrItemNotFound    = errors.New("item not found in cart")

	errIllegalTransition = errors.New("illegal placement state transition")
)
