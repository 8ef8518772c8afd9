// Package errors provides the structured error types used across lifelens.
// Every error carries a stack trace via cockroachdb/errors and knows how to
// marshal itself into a zerolog event for structured log output.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// TrainingError indicates that a model could not be trained from the given
// table: a required column is missing or the table is empty. It is always
// surfaced to the caller before any artifact is written.
type TrainingError struct {
	Op     string
	Column string // missing column, empty when the table itself is unusable
	Reason string
}

func (e *TrainingError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("lifelens: %s: missing required column %q", e.Op, e.Column)
	}
	return fmt.Sprintf("lifelens: %s: %s", e.Op, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *TrainingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("reason", e.Reason).
		Str("type", "TrainingError")
}

// NewTrainingError creates a TrainingError with an attached stack trace.
func NewTrainingError(op, reason string) error {
	return errors.WithStack(&TrainingError{Op: op, Reason: reason})
}

// NewMissingColumnError creates a TrainingError naming the missing column.
func NewMissingColumnError(op, column string) error {
	return errors.WithStack(&TrainingError{Op: op, Column: column, Reason: "missing column"})
}

// ArtifactError indicates that a persisted model artifact could not be read
// or written.
type ArtifactError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("lifelens: %s: artifact %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ArtifactError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("path", e.Path).
		AnErr("cause", e.Err).
		Str("type", "ArtifactError")
}

// NewArtifactError creates an ArtifactError with an attached stack trace.
func NewArtifactError(op, path string, err error) error {
	return errors.WithStack(&ArtifactError{Op: op, Path: path, Err: err})
}

// ShapeError indicates a feature-count mismatch between a trained model and
// the names or values supplied by the caller.
type ShapeError struct {
	Op       string
	Expected int
	Got      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("lifelens: %s: expected %d features, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ShapeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "ShapeError")
}

// NewShapeError creates a ShapeError with an attached stack trace.
func NewShapeError(op string, expected, got int) error {
	return errors.WithStack(&ShapeError{Op: op, Expected: expected, Got: got})
}

// ValidationError indicates that a request parameter failed validation, for
// example a prediction input outside the observed feature range.
type ValidationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lifelens: validation failed for %q: %s (got: %v)", e.Param, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with an attached stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{Param: param, Reason: reason, Value: value})
}

// NotFittedError is returned when Predict or FeatureImportances is called on
// a model that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("lifelens: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with an attached stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// cockroachdb/errors re-exports, so callers only import this package.

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}
