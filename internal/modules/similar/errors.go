package similar

import "errors"

var (
	ErrDealNotFound = errors.New("target deal not found")
	ErrValidation   = errors.New("validation error")
)
