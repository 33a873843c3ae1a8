package container

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeConfiguration
	ErrCodeNotRegistered
	ErrCodeDynamicLoad
	ErrCodeResolutionFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:          "UNKNOWN",
	ErrCodeConfiguration:    "CONFIGURATION",
	ErrCodeNotRegistered:    "NOT_REGISTERED",
	ErrCodeDynamicLoad:      "DYNAMIC_LOAD",
	ErrCodeResolutionFailed: "RESOLUTION_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the single error type returned by the container.
type Error struct {
	Code    ErrorCode
	Message string
	Name    string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Name != "" {
		b.WriteString(fmt.Sprintf(" name=%q:", e.Name))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newError(code ErrorCode, name, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Name:    name,
		Message: message,
		Cause:   cause,
	}
}

func errConfiguration(name, message string) *Error {
	return newError(ErrCodeConfiguration, name, message, nil)
}

func errNotRegistered(name string) *Error {
	return newError(ErrCodeNotRegistered, name, name+" not in container", nil)
}

func errDynamicLoad(ref string, cause error) *Error {
	return newError(ErrCodeDynamicLoad, ref, "failed to load "+ref, cause)
}

func errResolutionFailed(name string, cause error) *Error {
	return newError(ErrCodeResolutionFailed, name, "failed to resolve "+name, cause)
}

func errTypeMismatch(name string, want string, got any) *Error {
	return newError(
		ErrCodeResolutionFailed,
		name,
		fmt.Sprintf("resolved to %T, want %s", got, want),
		nil,
	)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, &Error{Code: ErrCodeConfiguration})
}

func IsNotRegistered(err error) bool {
	return errors.Is(err, &Error{Code: ErrCodeNotRegistered})
}

func IsDynamicLoad(err error) bool {
	return errors.Is(err, &Error{Code: ErrCodeDynamicLoad})
}

func IsResolutionFailed(err error) bool {
	return errors.Is(err, &Error{Code: ErrCodeResolutionFailed})
}
