package errors

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRequeueable       = errors.New("notification is not in error")
	ErrNoTemplate           = errors.New("no template for message type")
)
