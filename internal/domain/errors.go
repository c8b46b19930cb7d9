package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeValidation       ErrCode = "validation_error"
	CodeInvalidBody      ErrCode = "invalid_body"
	CodeNotFound         ErrCode = "not_found"
	CodeStoreUnavailable ErrCode = "store_unavailable"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string

	// Err is the underlying cause. It is logged, never rendered to clients.
	Err error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Meta) > 0 {
		msg = fmt.Sprintf("%s (%v)", msg, e.Meta)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrInvalidBody(msg string, meta map[string]string) error {
	return &AppError{Code: CodeInvalidBody, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error { return &AppError{Code: CodeNotFound, Message: msg} }

// ErrStoreUnavailable annotates a store failure with the operation attempted and
// the city involved (empty for index-wide operations).
func ErrStoreUnavailable(op, city string, cause error) error {
	meta := map[string]string{"op": op}
	if city != "" {
		meta["city"] = city
	}
	return &AppError{Code: CodeStoreUnavailable, Message: "document store unavailable", Meta: meta, Err: cause}
}

// CodeOf returns the AppError code carried by err, or "" for foreign errors.
func CodeOf(err error) ErrCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func IsNotFound(err error) bool         { return CodeOf(err) == CodeNotFound }
func IsValidation(err error) bool       { return CodeOf(err) == CodeValidation }
func IsStoreUnavailable(err error) bool { return CodeOf(err) == CodeStoreUnavailable }

// ErrCityExists is returned by stores when a create-only write hits an
// existing document. It never reaches clients; the service turns it into an update.
var ErrCityExists = errors.New("city already exists")
