package report

import "errors"

var (
	ErrRenderFailed  = errors.New("report: render failed")
	ErrWriteFailed   = errors.New("report: write failed")
	ErrPublishFailed = errors.New("report: publish failed")
)
