// Package repository provides data access layer implementations.
package repository

import "errors"

// Common errors for repository operations.
var (
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrItemNotFound         = errors.New("shop item not found")
	ErrItemExists           = errors.New("shop item already exists")
	ErrInsufficientQuantity = errors.New("insufficient item quantity")
	ErrAlreadyPurchased     = errors.New("one-time item already purchased")
	ErrPromoNotFound        = errors.New("promo code not found")
	ErrPromoExists          = errors.New("promo code already exists")
	ErrAlreadyRedeemed      = errors.New("promo code already redeemed")
	ErrEventNotFound        = errors.New("event not found")
)
