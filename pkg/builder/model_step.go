package builder

import (
	"errors"
	"slices"

	"github.com/tapestryml/tapestry/pkg/api"
)

// ModelStep is a copy-on-write builder for one model step collection. Use
// NewModelStep, chain With* methods, then Build to compose the steps
type ModelStep struct {
	name        string
	req         *api.ModelStepRequest
	dependsOn   []string
	displayName string
	description string
	uniform     []*api.RetryPolicy
	policyMap   *api.RetryPolicyMap
}

var (
	ErrNameEmpty  = errors.New("model step name empty")
	ErrRequestNil = errors.New("model step request nil")
)

// NewModelStep creates a model step builder. The name must be unique within
// the pipeline; composed step names derive from it
func NewModelStep(name string, req *api.ModelStepRequest) *ModelStep {
	return &ModelStep{name: name, req: req}
}

// WithDependsOn sets the upstream step names the first steps in this
// collection depend on
func (m *ModelStep) WithDependsOn(steps ...string) *ModelStep {
	res := *m
	res.dependsOn = slices.Clone(steps)
	return &res
}

// WithRetryPolicies applies the given policies uniformly to every generated
// sub-step
func (m *ModelStep) WithRetryPolicies(policies ...*api.RetryPolicy) *ModelStep {
	res := *m
	res.uniform = slices.Clone(policies)
	res.policyMap = nil
	return &res
}

// WithRetryPolicyMap distributes policies per sub-step kind; absent buckets
// leave that kind without retries
func (m *ModelStep) WithRetryPolicyMap(pm *api.RetryPolicyMap) *ModelStep {
	res := *m
	res.policyMap = pm
	res.uniform = nil
	return &res
}

func (m *ModelStep) WithDisplayName(name string) *ModelStep {
	res := *m
	res.displayName = name
	return &res
}

func (m *ModelStep) WithDescription(description string) *ModelStep {
	res := *m
	res.description = description
	return &res
}

// Build validates the request and composes the step collection. Validation
// failures are terminal; no partial collection is produced
func (m *ModelStep) Build() (*api.StepCollection, error) {
	if m.name == "" {
		return nil, ErrNameEmpty
	}
	if m.req == nil {
		return nil, ErrRequestNil
	}
	if err := m.req.Validate(); err != nil {
		return nil, err
	}

	buckets := m.buckets()
	if err := buckets.Validate(); err != nil {
		return nil, err
	}

	c := &composition{ms: m, req: m.req.Clone(), buckets: buckets}
	if len(c.req.NeedRepack) > 0 {
		c.appendRepackSteps()
	}
	if c.req.Register != nil {
		c.appendRegisterStep()
	} else {
		c.appendCreateStep()
	}

	return &api.StepCollection{Name: m.name, Steps: c.steps}, nil
}

func (m *ModelStep) buckets() *api.RetryPolicyMap {
	if m.policyMap != nil {
		return m.policyMap
	}
	return &api.RetryPolicyMap{
		CreateModel:   m.uniform,
		RegisterModel: m.uniform,
		RepackModel:   m.uniform,
	}
}
