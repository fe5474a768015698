package deal

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("deal not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyClosed     = errors.New("deal already closed")
	ErrNotClosed         = errors.New("deal is not closed")
	ErrPolicyNumberTaken = errors.New("policy number already taken")
	ErrClientConflict    = errors.New("policy client fields conflict")
)
