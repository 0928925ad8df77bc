package errors

import "errors"

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotOfferOwner  = errors.New("caller does not own this offer")
	ErrInvalidAmount  = errors.New("invalid redemption amount")
	ErrInvalidChannel = errors.New("invalid redemption channel")
)
