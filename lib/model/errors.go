package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	FieldInvalid ErrorKind = iota
	CrossFieldInvariant
	TypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case FieldInvalid:
		return "field"
	case CrossFieldInvariant:
		return "cross-field"
	case TypeMismatch:
		return "type"
	default:
		return fmt.Sprintf("ErrorKind(%v)", int(k))
	}
}

var (
	ErrMissing                    = errors.New("value is required")
	ErrEmpty                      = errors.New("value cannot be empty or whitespace-only")
	ErrTooLong                    = errors.New("value is too long")
	ErrNegative                   = errors.New("value cannot be negative")
	ErrInvalidSHA                 = errors.New("invalid SHA")
	ErrInvalidSignatureFormat     = errors.New("GPG signature must start with '-----BEGIN' or 'gpgsig '")
	ErrInvalidBranchName          = errors.New("invalid branch name")
	ErrInvalidPath                = errors.New("invalid path")
	ErrInvalidChangeShape         = errors.New("invalid number of source branches for change type")
	ErrPathPresence               = errors.New("paths do not match modification type")
	ErrCountsWithoutModifications = errors.New("non-zero counts require modifications")
	ErrUnknownChangeType          = errors.New("unknown change type")
	ErrUnknownModificationKind    = errors.New("unknown modification type")
	ErrNoPathAvailable            = errors.New("FileChange must have at least one path")
)

// FieldError is a single violation found while constructing an entity.
type FieldError struct {
	Entity string
	Field  string
	Kind   ErrorKind
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v.%v: %v", e.Entity, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every violation of one construction call.
type ValidationError struct {
	Entity string
	Errors []*FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}

	noun := "error"
	if len(e.Errors) != 1 {
		noun = "errors"
	}

	return fmt.Sprintf("%v: %v validation %v: %v", e.Entity, len(e.Errors), noun, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	result := make([]error, 0, len(e.Errors))
	for _, fe := range e.Errors {
		result = append(result, fe)
	}
	return result
}

// Fields returns the names of the fields that failed, in the order found.
func (e *ValidationError) Fields() []string {
	result := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		result = append(result, fe.Field)
	}
	return result
}

// HasKind reports whether any violation is of the given kind.
func (e *ValidationError) HasKind(kind ErrorKind) bool {
	for _, fe := range e.Errors {
		if fe.Kind == kind {
			return true
		}
	}
	return false
}

// ChangeShapeError is the cardinality violation of a ChangeClassification.
type ChangeShapeError struct {
	ChangeType     ChangeType
	SourceBranches int
}

func (e *ChangeShapeError) Error() string {
	shape := changeShapes[e.ChangeType]
	return fmt.Sprintf("%v: change type '%v' requires %v source branches, got %v",
		ErrInvalidChangeShape, e.ChangeType, shape, e.SourceBranches)
}

func (e *ChangeShapeError) Is(target error) bool {
	return target == ErrInvalidChangeShape
}

type validator struct {
	entity string
	errs   []*FieldError
}

func newValidator(entity string) *validator {
	return &validator{entity: entity}
}

func (v *validator) add(field string, kind ErrorKind, err error) {
	v.errs = append(v.errs, &FieldError{
		Entity: v.entity,
		Field:  field,
		Kind:   kind,
		Err:    err,
	})
}

func (v *validator) field(field string, err error) {
	if err != nil {
		v.add(field, FieldInvalid, err)
	}
}

func (v *validator) crossField(field string, err error) {
	if err != nil {
		v.add(field, CrossFieldInvariant, err)
	}
}

func (v *validator) failed() bool {
	return len(v.errs) > 0
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}

	return &ValidationError{
		Entity: v.entity,
		Errors: v.errs,
	}
}
