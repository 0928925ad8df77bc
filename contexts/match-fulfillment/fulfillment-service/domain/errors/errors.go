package errors

import "errors"

var (
	ErrRecordNotFound        = errors.New("order fulfillment record not found")
	ErrMatchNotAccepted      = errors.New("match is not accepted")
	ErrNoEligibleProducts    = errors.New("offer has no eligible catalog products")
	ErrNoCommerceIntegration = errors.New("brand has no commerce integration")
	ErrDiscountAlreadyExists = errors.New("discount already exists for this match")
	ErrShipmentAlreadyExists = errors.New("manual shipment already exists for this match")
)
