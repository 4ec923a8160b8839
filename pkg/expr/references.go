package expr

import (
	"errors"
	"fmt"
)

type (
	// ParameterType identifies the declared type of a pipeline parameter
	ParameterType string

	// Parameter references a named, typed input to the overall pipeline,
	// resolved when the pipeline is invoked
	Parameter struct {
		deferred
		Name    string
		Type    ParameterType
		Default any
	}

	// ExecutionVariable references a built-in value describing the current
	// pipeline run
	ExecutionVariable struct {
		deferred
		Name string
	}

	// Property references an output value of another step, resolved only
	// during remote execution
	Property struct {
		deferred
		Path string
	}
)

const (
	ParameterString  ParameterType = "String"
	ParameterInteger ParameterType = "Integer"
	ParameterFloat   ParameterType = "Float"
	ParameterBoolean ParameterType = "Boolean"
)

// Built-in execution variables exposed by the platform
var (
	StartDateTime        = &ExecutionVariable{Name: "StartDateTime"}
	CurrentDateTime      = &ExecutionVariable{Name: "CurrentDateTime"}
	PipelineName         = &ExecutionVariable{Name: "PipelineName"}
	PipelineArn          = &ExecutionVariable{Name: "PipelineArn"}
	PipelineExecutionID  = &ExecutionVariable{Name: "PipelineExecutionId"}
	PipelineExecutionArn = &ExecutionVariable{Name: "PipelineExecutionArn"}
	TrainingJobName      = &ExecutionVariable{Name: "TrainingJobName"}
	ProcessingJobName    = &ExecutionVariable{Name: "ProcessingJobName"}
)

var (
	ErrParameterNameEmpty = errors.New("parameter name empty")
	ErrVariableNameEmpty  = errors.New("execution variable name empty")
	ErrPropertyPathEmpty  = errors.New("property path empty")
)

// NewStringParameter creates a string-typed pipeline parameter
func NewStringParameter(name string) *Parameter {
	return &Parameter{Name: name, Type: ParameterString}
}

// NewIntegerParameter creates an integer-typed pipeline parameter
func NewIntegerParameter(name string) *Parameter {
	return &Parameter{Name: name, Type: ParameterInteger}
}

// NewFloatParameter creates a float-typed pipeline parameter
func NewFloatParameter(name string) *Parameter {
	return &Parameter{Name: name, Type: ParameterFloat}
}

// NewBooleanParameter creates a boolean-typed pipeline parameter
func NewBooleanParameter(name string) *Parameter {
	return &Parameter{Name: name, Type: ParameterBoolean}
}

// WithDefault returns a copy of the parameter carrying a default value
func (p *Parameter) WithDefault(value any) *Parameter {
	res := *p
	res.Default = value
	return &res
}

func (p *Parameter) Serialize() (any, error) {
	if p.Name == "" {
		return nil, ErrParameterNameEmpty
	}
	return getExpr("Parameters." + p.Name), nil
}

func (p *Parameter) ToString() Expression {
	return NewJoin("", p)
}

// Definition renders the parameter declaration consumed by the pipeline
// definition serializer
func (p *Parameter) Definition() map[string]any {
	res := map[string]any{
		"Name": p.Name,
		"Type": string(p.Type),
	}
	if p.Default != nil {
		res["DefaultValue"] = p.Default
	}
	return res
}

func (v *ExecutionVariable) Serialize() (any, error) {
	if v.Name == "" {
		return nil, ErrVariableNameEmpty
	}
	return getExpr("Execution." + v.Name), nil
}

func (v *ExecutionVariable) ToString() Expression {
	return NewJoin("", v)
}

// NewProperty creates a property reference with the given path
func NewProperty(path string) *Property {
	return &Property{Path: path}
}

// StepProperty creates a property reference rooted at a step's outputs
func StepProperty(stepName, path string) *Property {
	return &Property{Path: "Steps." + stepName + "." + path}
}

// Sub extends the property path with a named sub-property
func (p *Property) Sub(name string) *Property {
	return &Property{Path: p.Path + "." + name}
}

// Index extends the property path with an array subscript
func (p *Property) Index(i int) *Property {
	return &Property{Path: fmt.Sprintf("%s[%d]", p.Path, i)}
}

func (p *Property) Serialize() (any, error) {
	if p.Path == "" {
		return nil, ErrPropertyPathEmpty
	}
	return getExpr(p.Path), nil
}

func (p *Property) ToString() Expression {
	return NewJoin("", p)
}
