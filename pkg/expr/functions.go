package expr

import (
	"errors"
	"slices"
	"strings"
)

type (
	// Join concatenates its values with a separator. The concatenation
	// happens inside the execution engine, so values may be deferred
	// expressions as well as primitives
	Join struct {
		deferred
		On     string
		Values []any
	}

	// JsonGet extracts a value from a step's property file by JSON path.
	// The extraction happens inside the execution engine
	JsonGet struct {
		deferred
		StepName string
		File     PropertyFileRef
		Path     string
	}
)

var (
	ErrJsonGetStepName = errors.New(
		"json get requires a valid step name as a concrete string",
	)
	ErrJsonGetFile = errors.New("json get requires a property file")
)

// NewJoin creates a Join over the given values. An empty separator is the
// default in the wire representation
func NewJoin(on string, values ...any) *Join {
	return &Join{On: on, Values: slices.Clone(values)}
}

func (j *Join) Serialize() (any, error) {
	values := make([]any, len(j.Values))
	for i, v := range j.Values {
		coerced, err := Coerce(v)
		if err != nil {
			return nil, err
		}
		values[i] = coerced
	}
	return map[string]any{
		"Std:Join": map[string]any{
			"On":     j.On,
			"Values": values,
		},
	}, nil
}

// ToString returns the Join itself; it is already string-like in the wire
// representation
func (j *Join) ToString() Expression {
	return j
}

// NewJsonGet creates a JsonGet extracting jsonPath from the named step's
// property file
func NewJsonGet(stepName string, file PropertyFileRef, jsonPath string) *JsonGet {
	return &JsonGet{StepName: stepName, File: file, Path: jsonPath}
}

func (g *JsonGet) Serialize() (any, error) {
	if strings.TrimSpace(g.StepName) == "" {
		return nil, ErrJsonGetStepName
	}
	if g.File == nil {
		return nil, ErrJsonGetFile
	}
	ref := "Steps." + g.StepName + ".PropertyFiles." + g.File.propertyFileName()
	return map[string]any{
		"Std:JsonGet": map[string]any{
			"PropertyFile": getExpr(ref),
			"Path":         g.Path,
		},
	}, nil
}

// ToString wraps the JsonGet as the sole value of an empty-separator Join,
// deferring the actual stringification to the execution engine
func (g *JsonGet) ToString() Expression {
	return NewJoin("", g)
}
