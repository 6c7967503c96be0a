package service

import "errors"

var (
	ErrInvalidOwner      = errors.New("invalid cart owner")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
)
