package expr

import "errors"

type (
	// Expression is a deferred pipeline value. Serialize renders it into
	// the wire-format intermediate representation consumed by the pipeline
	// definition serializer
	Expression interface {
		Serialize() (any, error)
	}

	// Variable is an expression that can defer its own stringification to
	// the execution engine
	Variable interface {
		Expression
		ToString() Expression
	}

	// deferred is embedded by every expression variant to reject use as a
	// native scalar. A pipeline variable has no value until the execution
	// engine resolves it, so converting one locally would bake a wrong
	// literal into the definition instead of failing loudly
	deferred struct{}
)

var (
	ErrStringConversion = errors.New(
		"pipeline variables do not support string conversion",
	)
	ErrIntConversion = errors.New(
		"pipeline variables do not support integer conversion",
	)
	ErrFloatConversion = errors.New(
		"pipeline variables do not support float conversion",
	)
	ErrConcatenation = errors.New(
		"pipeline variables do not support concatenation",
	)
)

func (deferred) AsString() (string, error) {
	return "", ErrStringConversion
}

func (deferred) AsInt() (int, error) {
	return 0, ErrIntConversion
}

func (deferred) AsFloat() (float64, error) {
	return 0, ErrFloatConversion
}

func (deferred) Concat(any) (Expression, error) {
	return nil, ErrConcatenation
}

// HasPrefix cannot be decided before the value resolves remotely, so it
// reports false rather than failing
func (deferred) HasPrefix(string) bool {
	return false
}

// HasSuffix cannot be decided before the value resolves remotely, so it
// reports false rather than failing
func (deferred) HasSuffix(string) bool {
	return false
}

// Coerce returns the canonical form of a value appearing inside an
// expression. Primitives pass through untouched; expression variants
// serialize to their own wire form
func Coerce(v any) (any, error) {
	if e, ok := v.(Expression); ok {
		return e.Serialize()
	}
	return v, nil
}

func getExpr(path string) map[string]any {
	return map[string]any{"Get": path}
}
