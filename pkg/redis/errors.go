package redis

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("redis: REDIS_URL is empty")
	ErrFailedToParseURL   = errors.New("redis: invalid connection URL")
	ErrConnectionFailed   = errors.New("redis: server unreachable")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")

	// ErrLocked is returned when another process is already sending the batch.
	ErrLocked = errors.New("redis: batch lock held by another process")
	// ErrLockLost is returned when the lock expired or was taken over before release.
	ErrLockLost   = errors.New("redis: batch lock lost")
	ErrLockFailed = errors.New("redis: batch lock operation failed")
)
