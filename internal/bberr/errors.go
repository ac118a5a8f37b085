// Package bberr defines the error kinds reported while configuring beam-beam
// encounters.
//
// Every sentinel belongs to exactly one kind so callers can separate
// configuration mistakes (ErrValidation), missing rows (ErrLookup) and
// physically implausible geometry (ErrTolerance) with errors.Is.
package bberr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation = errors.New("validation error")
	ErrLookup     = errors.New("lookup error")
	ErrTolerance  = errors.New("tolerance error")
)

// kindError is a sentinel that also matches its kind under errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

func newKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Validation errors.
var (
	ErrInvalidSlices       = newKind(ErrValidation, "beambeam: invalid number of slices")
	ErrInvalidParams       = newKind(ErrValidation, "beambeam: invalid parameters")
	ErrUnknownKind         = newKind(ErrValidation, "beambeam: unknown encounter label")
	ErrModeConflict        = newKind(ErrValidation, "beambeam: inconsistent beam/antisymmetry mode")
	ErrCouplingUnsupported = newKind(ErrValidation, "beambeam: coupled beam-beam is not implemented")
)

// Lookup errors.
var (
	ErrPartnerNotFound = newKind(ErrLookup, "beambeam: partner encounter not found")
	ErrElementNotFound = newKind(ErrLookup, "beambeam: element not found")
)

// Tolerance errors.
var (
	ErrFramesNotParallel = newKind(ErrTolerance, "beambeam: reference frames are not parallel")
	ErrMirrorMismatch    = newKind(ErrTolerance, "beambeam: no antisymmetric partner within tolerance")
)

// ElementError attaches the offending element and the measured value to a
// sentinel error.
type ElementError struct {
	Element string
	Value   float64
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s: %s (value %g)", e.Element, e.Err.Error(), e.Value)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// AtElement wraps err with the element it refers to.
func AtElement(err error, element string, value float64) error {
	return &ElementError{Element: element, Value: value, Err: err}
}
