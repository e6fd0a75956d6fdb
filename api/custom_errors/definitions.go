package custom_errors

import "errors"

var (
	ErrConflict       = errors.New("record already exists")
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("invalid credentials")
	ErrForbidden      = errors.New("insufficient permissions")
	ErrInternalServer = errors.New("internal server error")
)
