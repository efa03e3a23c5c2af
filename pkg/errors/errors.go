package errors

import (
	"errors"
	"fmt"
)

var (
	ErrThrottled         = errors.New("throttled by remote store")
	ErrSinkRejected      = errors.New("log events rejected by remote store")
	ErrRetryExhausted    = errors.New("retry attempts exhausted")
	ErrInvalidGroupName  = errors.New("invalid log group name")
	ErrInvalidStreamName = errors.New("invalid log stream name")
	ErrInvalidBatchSize  = errors.New("invalid batch size")
	ErrInvalidInterval   = errors.New("invalid interval value")
	ErrInvalidRegion     = errors.New("invalid AWS region")
	ErrConfigNotFound    = errors.New("config not found")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrContainerCreate   = errors.New("container create failed")
	ErrContainerStart    = errors.New("container start failed")
	ErrContainerLogs     = errors.New("container log read failed")
	ErrContainerStop     = errors.New("container stop failed")
	ErrContainerRemove   = errors.New("container remove failed")
	ErrCanceled          = errors.New("operation canceled")
	ErrNotImplemented    = errors.New("not implemented")
)

func NewThrottleError(err error) error {
	return fmt.Errorf("%w: %v", ErrThrottled, err)
}

func NewSinkError(group string, stream string, err error) error {
	return fmt.Errorf("%w: group=%s stream=%s: %v", ErrSinkRejected, group, stream, err)
}

func NewRetryError(attempts int, err error) error {
	return fmt.Errorf("%w: attempts=%d: %v", ErrRetryExhausted, attempts, err)
}

func NewBatchSizeError(size int) error {
	return fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
}

func NewIntervalError(field string, value string) error {
	return fmt.Errorf("%w: field=%s value=%s", ErrInvalidInterval, field, value)
}

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}

func NewContainerError(sentinel error, id string, err error) error {
	return fmt.Errorf("%w: container=%s: %v", sentinel, id, err)
}
