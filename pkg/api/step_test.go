package api_test

import (
	"testing"

	"github.com/tapestryml/tapestry/internal/assert"
	"github.com/tapestryml/tapestry/pkg/api"
	"github.com/tapestryml/tapestry/pkg/expr"
)

func TestStepValidation(t *testing.T) {
	as := assert.New(t)

	valid := &api.Step{
		Name:    "churn-CreateModel",
		Type:    api.StepTypeCreateModel,
		Request: validCreateRequest().Create,
	}
	as.NoError(valid.Validate())

	t.Run("empty_name", func(t *testing.T) {
		s := *valid
		s.Name = ""
		as.ErrorIs(s.Validate(), api.ErrStepNameEmpty)
	})

	t.Run("nil_request", func(t *testing.T) {
		s := *valid
		s.Request = nil
		as.ErrorIs(s.Validate(), api.ErrStepRequestNil)
	})

	t.Run("bad_retry_policy", func(t *testing.T) {
		s := *valid
		s.RetryPolicies = []*api.RetryPolicy{{MaxAttempts: 1}}
		as.ErrorIs(s.Validate(), api.ErrExceptionTypeRequired)
	})
}

func TestStepEntry(t *testing.T) {
	as := assert.New(t)

	t.Run("minimal", func(t *testing.T) {
		s := &api.Step{
			Name:    "churn-CreateModel",
			Type:    api.StepTypeCreateModel,
			Request: validCreateRequest().Create,
		}
		entry, err := s.Entry()
		as.NoError(err)
		as.Equal("churn-CreateModel", entry["Name"])
		as.Equal("Model", entry["Type"])
		as.NotNil(entry["Arguments"])
		as.NotContains(entry, "DependsOn")
		as.NotContains(entry, "RetryPolicies")
		as.NotContains(entry, "DisplayName")
		as.NotContains(entry, "Description")
	})

	t.Run("full", func(t *testing.T) {
		s := &api.Step{
			Name:        "churn-RegisterModel",
			Type:        api.StepTypeRegisterModel,
			DisplayName: "Register Churn Model",
			Description: "registers the churn scoring model",
			DependsOn:   []string{"train", "evaluate"},
			RetryPolicies: []*api.RetryPolicy{{
				ExceptionTypes: []api.ExceptionType{api.StepThrottling},
				MaxAttempts:    3,
			}},
			Request: validRegisterRequest().Register,
		}
		entry, err := s.Entry()
		as.NoError(err)
		as.Equal("RegisterModel", entry["Type"])
		as.Equal([]string{"train", "evaluate"}, entry["DependsOn"])
		as.Equal("Register Churn Model", entry["DisplayName"])
		as.Equal("registers the churn scoring model", entry["Description"])

		policies, ok := entry["RetryPolicies"].([]any)
		as.Require.True(ok)
		as.Len(policies, 1)
	})

	t.Run("deferred_model_data_expands", func(t *testing.T) {
		req := validCreateRequest().Create
		req.PrimaryContainer.ModelDataUrl =
			expr.StepProperty("train", "ModelArtifacts.S3ModelArtifacts")
		s := &api.Step{
			Name:    "churn-CreateModel",
			Type:    api.StepTypeCreateModel,
			Request: req,
		}
		entry, err := s.Entry()
		as.NoError(err)

		args := entry["Arguments"].(map[string]any)
		container := args["PrimaryContainer"].(map[string]any)
		as.Equal(map[string]any{
			"Get": "Steps.train.ModelArtifacts.S3ModelArtifacts",
		}, container["ModelDataUrl"])
	})

	t.Run("serialization_failure_propagates", func(t *testing.T) {
		req := validCreateRequest().Create
		req.PrimaryContainer.ModelDataUrl = &expr.Parameter{}
		s := &api.Step{
			Name:    "churn-CreateModel",
			Type:    api.StepTypeCreateModel,
			Request: req,
		}
		_, err := s.Entry()
		as.ErrorIs(err, expr.ErrParameterNameEmpty)
	})
}

func TestStepCollection(t *testing.T) {
	as := assert.New(t)

	sc := &api.StepCollection{
		Name: "churn",
		Steps: []*api.Step{
			{
				Name:    "churn-RepackModel-0",
				Type:    api.StepTypeRepackModel,
				Request: validCreateRequest().Create,
			},
			{
				Name:    "churn-CreateModel",
				Type:    api.StepTypeCreateModel,
				Request: validCreateRequest().Create,
			},
		},
	}

	t.Run("step_names_ordered", func(t *testing.T) {
		as.Equal(
			[]string{"churn-RepackModel-0", "churn-CreateModel"},
			sc.StepNames(),
		)
	})

	t.Run("find", func(t *testing.T) {
		as.NotNil(sc.Find("churn-CreateModel"))
		as.Nil(sc.Find("churn-RegisterModel"))
	})

	t.Run("entries_ordered", func(t *testing.T) {
		entries, err := sc.Entries()
		as.NoError(err)
		as.Len(entries, 2)
		as.Equal("churn-RepackModel-0", entries[0]["Name"])
		as.Equal("churn-CreateModel", entries[1]["Name"])
	})
}
