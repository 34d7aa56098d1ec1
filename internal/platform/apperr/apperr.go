// Package apperr defines the error kinds surfaced by the HTTP API and the single
// place where they are turned into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindUnconfigured
	KindUnavailable
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error { return newf(KindInvalid, format, args...) }

func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}

func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }
func NotFound(format string, args ...any) *Error  { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error  { return newf(KindConflict, format, args...) }

func RateLimited(format string, args ...any) *Error {
	return newf(KindRateLimited, format, args...)
}

func Unconfigured(format string, args ...any) *Error {
	return newf(KindUnconfigured, format, args...)
}

// Unavailable wraps a dependency failure.
func Unavailable(err error, format string, args ...any) *Error {
	e := newf(KindUnavailable, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, treating unclassified errors as internal
// unless they look like an unreachable store.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if database.IsUnavailableError(err) {
		return KindUnavailable
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Respond writes err as a JSON error payload and aborts the chain. Internal details
// are only exposed when gin runs in debug mode.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	body := gin.H{}

	var appErr *Error
	switch {
	case errors.As(err, &appErr):
		body["error"] = appErr.Message
		if kind == KindUnconfigured {
			body["code"] = "UNCONFIGURED"
		}
	case kind == KindUnavailable:
		body["error"] = "service temporarily unavailable"
	default:
		body["error"] = "internal server error"
	}

	if kind == KindInternal || kind == KindUnavailable {
		logging.Log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		if gin.Mode() == gin.DebugMode {
			body["details"] = err.Error()
		}
	}

	c.AbortWithStatusJSON(kind.Status(), body)
}
