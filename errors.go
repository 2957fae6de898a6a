// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package swfmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a primitive gets an out-of-domain input,
	// e.g. a negative bit position.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned when a read would go past the end of the buffer.
	ErrOutOfRange = errors.New("out of range")

	// ErrMisalignedAccess is returned when a byte read is requested at a position
	// that is not a multiple of 8.
	ErrMisalignedAccess = errors.New("misaligned access")

	// ErrInvalidFormat is matched by all InvalidFormatError values.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnknownEnumValue is matched by all UnknownEnumValueError values.
	ErrUnknownEnumValue = errors.New("unknown enum value")

	// ErrMalformedTag is returned when a tag body decoder consumes more than the
	// tag's declared length.
	ErrMalformedTag = errors.New("malformed tag")

	// ErrDuplicateTag is returned when a tag code is registered twice.
	ErrDuplicateTag = errors.New("duplicate tag registration")

	// ErrRegistryFrozen is returned when a frozen Registry is modified.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrStopWalking is a sentinel error to signal that the walk should stop.
	ErrStopWalking = errors.New("stop walking")
)

// InvalidFormatError is used when the input is not a valid SWF file.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFormat, e.Err)
}

// Is reports whether target is ErrInvalidFormat.
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// IsInvalidFormat reports whether err is or wraps an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

func newInvalidFormatError(err error) error {
	return &InvalidFormatError{Err: err}
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return newInvalidFormatError(fmt.Errorf(format, args...))
}

// UnknownEnumValueError is returned when a coded field has no mapping in its table.
type UnknownEnumValueError struct {
	// Field names the coded field, e.g. "DefineSound.Format".
	Field string
	// Value is the unmapped code.
	Value uint64
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("%s: %s %d", ErrUnknownEnumValue, e.Field, e.Value)
}

// Is reports whether target is ErrUnknownEnumValue.
func (e *UnknownEnumValueError) Is(target error) bool {
	return target == ErrUnknownEnumValue
}
