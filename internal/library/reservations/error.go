package reservations

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeNotAvailable    Code = "NOT_AVAILABLE" // book exists but is held by someone
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string       { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError   { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError  { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) *APIError { return &APIError{Code: CodeForbidden, Message: msg} }

var (
	ErrBookNotFound        = ErrNotFound("book not found")
	ErrNotAvailable        = &APIError{Code: CodeNotAvailable, Message: "book is already reserved"}
	ErrNoActiveReservation = ErrNotFound("no active reservation for book")
	ErrReservationNotFound = ErrNotFound("reservation not found")
)

// ToHTTPStatus maps engine errors to statuses. A reserved book answers 404 like a
// missing one.
func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound, CodeNotAvailable:
			return http.StatusNotFound
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		}
	}
	return http.StatusInternalServerError
}
