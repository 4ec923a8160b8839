package api

import (
	"errors"
	"slices"
)

type (
	// StepType is the platform step kind a composed step materializes as
	StepType string

	// StepArguments is the request payload a step submits to the platform.
	// The composer treats it as opaque except for container ModelDataUrl
	// patching
	StepArguments interface {
		Arguments() (map[string]any, error)
	}

	// Step is one unit of remote work in a pipeline definition. Created
	// once during composition and immutable afterward
	Step struct {
		Name          string
		Type          StepType
		DisplayName   string
		Description   string
		DependsOn     []string
		RetryPolicies []*RetryPolicy
		Request       StepArguments
	}

	// StepCollection is the ordered result of composing a model step
	// request into concrete steps
	StepCollection struct {
		Name  string
		Steps []*Step
	}
)

const (
	StepTypeCreateModel   StepType = "Model"
	StepTypeRegisterModel StepType = "RegisterModel"
	StepTypeRepackModel   StepType = "Training"
)

// Role suffixes used when deriving step names from the collection name
const (
	CreateModelNameBase   = "CreateModel"
	RegisterModelNameBase = "RegisterModel"
	RepackModelNameBase   = "RepackModel"
)

var (
	ErrStepNameEmpty  = errors.New("step name empty")
	ErrStepRequestNil = errors.New("step request nil")
)

func (s *Step) Validate() error {
	if s.Name == "" {
		return ErrStepNameEmpty
	}
	if s.Request == nil {
		return ErrStepRequestNil
	}
	for _, p := range s.RetryPolicies {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Entry renders the step into the form the external pipeline definition
// serializer consumes: name, type, serialized arguments, dependency edges,
// retry policies, and display metadata
func (s *Step) Entry() (map[string]any, error) {
	args, err := s.Request.Arguments()
	if err != nil {
		return nil, err
	}

	res := map[string]any{
		"Name":      s.Name,
		"Type":      string(s.Type),
		"Arguments": args,
	}
	if len(s.DependsOn) > 0 {
		res["DependsOn"] = slices.Clone(s.DependsOn)
	}
	if len(s.RetryPolicies) > 0 {
		policies := make([]any, len(s.RetryPolicies))
		for i, p := range s.RetryPolicies {
			policies[i] = p.Request()
		}
		res["RetryPolicies"] = policies
	}
	if s.DisplayName != "" {
		res["DisplayName"] = s.DisplayName
	}
	if s.Description != "" {
		res["Description"] = s.Description
	}
	return res, nil
}

// StepNames returns the composed step names in order
func (c *StepCollection) StepNames() []string {
	res := make([]string, len(c.Steps))
	for i, s := range c.Steps {
		res[i] = s.Name
	}
	return res
}

// Find returns the step with the given name, or nil
func (c *StepCollection) Find(name string) *Step {
	for _, s := range c.Steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Entries renders every step in order; see Step.Entry
func (c *StepCollection) Entries() ([]map[string]any, error) {
	res := make([]map[string]any, len(c.Steps))
	for i, s := range c.Steps {
		entry, err := s.Entry()
		if err != nil {
			return nil, err
		}
		res[i] = entry
	}
	return res, nil
}
