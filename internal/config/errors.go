package config

import "errors"

var (
	ErrReadFile         = errors.New("config: failed to read config file")
	ErrParseFile        = errors.New("config: failed to parse config file")
	ErrParseEnv         = errors.New("config: failed to parse environment")
	ErrMerge            = errors.New("config: failed to merge overrides")
	ErrUnknownTransport = errors.New("config: transport must be smtp or resend")
	ErrNegativeDelay    = errors.New("config: SLEEP_SECONDS must not be negative")
	ErrMissingPath      = errors.New("config: template root and contacts file are required")
)
