package assert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapestryml/tapestry/internal/config"
	"github.com/tapestryml/tapestry/pkg/api"
	"github.com/tapestryml/tapestry/pkg/expr"
)

// Wrapper wraps testify assertions with Tapestry-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// New creates a new test assertion wrapper with both assert and require from
// testify plus Tapestry-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// Serializes asserts that an expression serializes without error to the
// expected wire value
func (w *Wrapper) Serializes(expected any, e expr.Expression) {
	w.Helper()
	actual, err := e.Serialize()
	w.NoError(err)
	w.Equal(expected, actual)
}

// SerializeFails asserts that serialization fails with an error matching the
// given sentinel
func (w *Wrapper) SerializeFails(e expr.Expression, sentinel error) {
	w.Helper()
	_, err := e.Serialize()
	w.ErrorIs(err, sentinel)
}

// WireJSON asserts that an expression's serialized form marshals to exactly
// the expected JSON document
func (w *Wrapper) WireJSON(expected string, e expr.Expression) {
	w.Helper()
	actual, err := e.Serialize()
	w.NoError(err)
	data, err := json.Marshal(actual)
	w.NoError(err)
	w.JSONEq(expected, string(data))
}

// CollectionValid asserts that a step collection and each of its steps pass
// validation
func (w *Wrapper) CollectionValid(sc *api.StepCollection) {
	w.Helper()
	w.NotNil(sc)
	w.NotEmpty(sc.Name)
	for _, step := range sc.Steps {
		w.NoError(step.Validate())
	}
}

// Step finds a step by name in a collection, failing the test when absent
func (w *Wrapper) Step(sc *api.StepCollection, name string) *api.Step {
	w.Helper()
	step := sc.Find(name)
	w.Require.NotNil(step, "collection should contain step: %s", name)
	if step == nil {
		w.FailNow("missing step: " + name)
	}
	return step
}

// NoStep asserts that a collection does not contain a step with the name
func (w *Wrapper) NoStep(sc *api.StepCollection, name string) {
	w.Helper()
	w.Nil(sc.Find(name), "collection should not contain step: %s", name)
}

// DependsOn asserts a step's exact dependency edges
func (w *Wrapper) DependsOn(step *api.Step, deps ...string) {
	w.Helper()
	if len(deps) == 0 {
		w.Empty(step.DependsOn)
		return
	}
	w.Equal(deps, step.DependsOn)
}

// RequestInvalid asserts that a request fails validation with an error
// matching the given sentinel
func (w *Wrapper) RequestInvalid(req *api.ModelStepRequest, sentinel error) {
	w.Helper()
	w.ErrorIs(req.Validate(), sentinel)
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if contains != "" {
		w.Contains(err.Error(), contains)
	}
}
