package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the broad category of a failure. Callers branch on the kind,
// the HTTP layer maps it to a status code.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindStateConflict     ErrorKind = "STATE_CONFLICT"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindOverRelease       ErrorKind = "OVER_RELEASE"
	KindPersistence       ErrorKind = "PERSISTENCE"
)

// ErrorCode identifies the specific failure within a kind.
type ErrorCode string

const (
	CodeEmptyOrder        ErrorCode = "EMPTY_ORDER"
	CodeInvalidDays       ErrorCode = "INVALID_DAYS"
	CodeInvalidQuantity   ErrorCode = "INVALID_QUANTITY"
	CodeNegativePrice     ErrorCode = "NEGATIVE_PRICE"
	CodeInvalidRate       ErrorCode = "INVALID_RATE"
	CodeCustomerNotFound  ErrorCode = "CUSTOMER_NOT_FOUND"
	CodeActorNotFound     ErrorCode = "ACTOR_NOT_FOUND"
	CodeItemNotFound      ErrorCode = "ITEM_NOT_FOUND"
	CodeRentalNotFound    ErrorCode = "RENTAL_NOT_FOUND"
	CodeItemInactive      ErrorCode = "ITEM_INACTIVE"
	CodeAlreadyReturned   ErrorCode = "ALREADY_RETURNED"
	CodeInvalidState      ErrorCode = "INVALID_STATE"
	CodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	CodeOverRelease       ErrorCode = "OVER_RELEASE"
	CodePersistence       ErrorCode = "PERSISTENCE_ERROR"
)

// Error is the structured failure returned by every ledger and lifecycle
// operation. Use errors.Is against the sentinels below; a sentinel without a
// Code matches every error of its Kind.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Kind == e.Kind
}

// Kind sentinels.
var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrStateConflict     = &Error{Kind: KindStateConflict, Message: "state conflict"}
	ErrPersistenceFailed = &Error{Kind: KindPersistence, Message: "persistence failure"}
)

// Code sentinels.
var (
	ErrEmptyOrder        = &Error{Kind: KindValidation, Code: CodeEmptyOrder, Message: "rental must contain at least one item"}
	ErrInvalidDays       = &Error{Kind: KindValidation, Code: CodeInvalidDays, Message: "invalid number of rental days"}
	ErrInvalidQuantity   = &Error{Kind: KindValidation, Code: CodeInvalidQuantity, Message: "quantity must be greater than zero"}
	ErrNegativePrice     = &Error{Kind: KindValidation, Code: CodeNegativePrice, Message: "catalog price is negative"}
	ErrInvalidRate       = &Error{Kind: KindValidation, Code: CodeInvalidRate, Message: "penalty rate cannot be negative"}
	ErrCustomerNotFound  = &Error{Kind: KindNotFound, Code: CodeCustomerNotFound, Message: "customer not found"}
	ErrActorNotFound     = &Error{Kind: KindNotFound, Code: CodeActorNotFound, Message: "actor not found"}
	ErrItemNotFound      = &Error{Kind: KindNotFound, Code: CodeItemNotFound, Message: "item not found"}
	ErrRentalNotFound    = &Error{Kind: KindNotFound, Code: CodeRentalNotFound, Message: "rental not found"}
	ErrItemInactive      = &Error{Kind: KindStateConflict, Code: CodeItemInactive, Message: "item is inactive"}
	ErrAlreadyReturned   = &Error{Kind: KindStateConflict, Code: CodeAlreadyReturned, Message: "rental was already returned"}
	ErrInvalidState      = &Error{Kind: KindStateConflict, Code: CodeInvalidState, Message: "rental cannot transition from its current state"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Code: CodeInsufficientStock, Message: "insufficient stock"}
	ErrOverRelease       = &Error{Kind: KindOverRelease, Code: CodeOverRelease, Message: "release would exceed total stock"}
)

// Errorf builds a new error with the kind and code of sentinel and a
// formatted, human-readable message.
func Errorf(sentinel *Error, format string, args ...any) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// PersistenceFailure classifies a store error. Errors that already carry a
// kind pass through untouched so business failures raised inside a unit of
// work keep their meaning after rollback.
func PersistenceFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{
		Kind:    KindPersistence,
		Code:    CodePersistence,
		Message: op + " failed",
		Err:     err,
	}
}

// KindOf returns the kind of err, or KindPersistence for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}
