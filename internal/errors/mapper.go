// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"
	"gorm.io/gorm"
)

// Error classes shared by the services. Wrap them so callers can classify
// with errors.Is.
var (
	// ErrValidation: malformed input; the caller must fix the request.
	ErrValidation = errors.New("validation error")
	// ErrNotFound: referenced user does not exist or is inactive/banned.
	ErrNotFound = errors.New("not found")
	// ErrPersistence: the store failed; the request is safe to retry.
	ErrPersistence = errors.New("persistence failure")
	// ErrUpstreamDegraded: the geolocation ranker could not serve. Logged,
	// never returned to callers.
	ErrUpstreamDegraded = errors.New("upstream degraded")
	// ErrConflict: the store aborted a write that raced another one on the
	// same rows (deadlock, lock wait). Services retry it; once retries run
	// out it reaches the caller as Aborted.
	ErrConflict = errors.New("write conflict")
)

// RetryDelay is the back-off advertised for retryable failures.
const RetryDelay = time.Second

// FieldError is a validation failure tied to one request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func (e *FieldError) Unwrap() error { return ErrValidation }

// Invalid builds a FieldError.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// Persistence marks err as a retryable store failure.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &classified{class: ErrPersistence, op: op, err: err}
}

// Conflict marks err as a lost write race.
func Conflict(op string, err error) error {
	return &classified{class: ErrConflict, op: op, err: err}
}

// NotFound marks a missing entity.
func NotFound(what string) error {
	return &classified{class: ErrNotFound, op: what}
}

type classified struct {
	class error
	op    string
	err   error
}

func (c *classified) Error() string {
	if c.err == nil {
		return c.op + ": " + c.class.Error()
	}
	return c.op + ": " + c.class.Error() + ": " + c.err.Error()
}

func (c *classified) Unwrap() []error {
	if c.err == nil {
		return []error{c.class}
	}
	return []error{c.class, c.err}
}

// Map converts service/repo errors into gRPC-friendly status errors.
// Raw store messages never leave the process.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var fe *FieldError
	switch {
	case errors.As(err, &fe):
		return withDetails(status.New(codes.InvalidArgument, fe.Error()), &errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: fe.Field, Description: fe.Reason}},
		})

	case errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, "invalid request")

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case errors.Is(err, ErrConflict):
		return withDetails(status.New(codes.Aborted, "concurrent update, retry the request"),
			&errdetails.RetryInfo{RetryDelay: durationpb.New(RetryDelay)})

	case errors.Is(err, ErrPersistence):
		return withDetails(status.New(codes.Unavailable, "storage temporarily unavailable, retry the request"),
			&errdetails.RetryInfo{RetryDelay: durationpb.New(RetryDelay)})

	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func withDetails(st *status.Status, details ...protoadapt.MessageV1) error {
	if withD, err := st.WithDetails(details...); err == nil {
		return withD.Err()
	}
	return st.Err()
}

// HTTPStatus is Map for the JSON gateway.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch status.Code(Map(err)) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Aborted:
		return http.StatusConflict
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Canceled:
		return 499
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
