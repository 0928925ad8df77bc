package errors

import "errors"

var ErrMatchNotFound = errors.New("no match for campaign code")
