package service

import "errors"

var (
	ErrNotAuthenticated = errors.New("user not logged in")
	ErrInvalidQuantity  = errors.New("quantity must be a non-negative integer")
	ErrInvalidProduct   = errors.New("product has no identifier")
	ErrInvalidLine      = errors.New("cart line id is empty")

	// ErrStale means the store applied the mutation but the follow-up read
	// failed, so the snapshot still shows the previous state.
	ErrStale = errors.New("cart snapshot is stale")
)
