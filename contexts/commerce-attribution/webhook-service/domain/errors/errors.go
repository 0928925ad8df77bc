package errors

import "errors"

var (
	ErrSignatureMismatch  = errors.New("webhook signature mismatch")
	ErrStoreConfigMissing = errors.New("no store config for shop domain")
	ErrUnknownTopic       = errors.New("unknown webhook topic")
	ErrPayloadInvalid     = errors.New("webhook payload invalid")

	// Resolution misses are expected: webhooks from unrelated commerce
	// activity must answer 200 with attributed=false, never an error.
	ErrMatchNotFound = errors.New("no match for campaign code")
	ErrOrderNotFound = errors.New("no attributed order for external order id")
)
