package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig = errors.New("storage: report bucket not configured")
	ErrNotFound      = errors.New("storage: bucket or object not found")
	ErrAccessDenied  = errors.New("storage: access to report bucket denied")
	ErrPublishFailed = errors.New("storage: failed to publish report")
	ErrLinkFailed    = errors.New("storage: failed to sign report link")
)

var s3Codes = map[string]error{
	"NoSuchKey":    ErrNotFound,
	"NoSuchBucket": ErrNotFound,
	"NotFound":     ErrNotFound,
	"AccessDenied": ErrAccessDenied,
	"Forbidden":    ErrAccessDenied,
}

// classify maps an S3 failure onto a package sentinel, falling back to op.
// The AWS error keeps only its text; callers match sentinels, not AWS types.
func classify(err, op error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if sentinel, ok := s3Codes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %v", sentinel, err)
		}
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", op, err)
}
