package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/matst80/slask-parts/pkg/types"
	"github.com/redis/go-redis/v9"
)

const (
	SystemErrorMessage      = "internal server error"
	RedisErrorMessage       = "redis operation failed"
	UnavailableErrorMessage = "catalog data unavailable"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidSpecification = types.ErrInvalidSpecification
	ErrCompareFull          = errors.New("compare list is full")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnavailable          = errors.New("unavailable")
	ErrInvalidQuote         = types.ErrInvalidQuote
	ErrRateLimited          = errors.New("too many requests")
)

// AppError wraps an underlying error with an HTTP status and a message safe to show clients.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, "key not found")
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// Unavailable marks a failed data fetch, clients get a 503 instead of an empty result.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%w: %w", ErrUnavailable, err), http.StatusServiceUnavailable, UnavailableErrorMessage)
}

func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, redis.Nil):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSpecification), errors.Is(err, ErrInvalidQuote):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrCompareFull):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client safe message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if StatusOf(err) >= http.StatusInternalServerError {
		return SystemErrorMessage
	}
	return err.Error()
}
