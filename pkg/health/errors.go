package health

import "errors"

var (
	ErrPathMissing  = errors.New("health: path missing")
	ErrCheckTimeout = errors.New("health: probe deadline exceeded")
)
