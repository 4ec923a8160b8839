package api_test

import (
	"testing"

	"github.com/tapestryml/tapestry/internal/assert"
	"github.com/tapestryml/tapestry/pkg/api"
)

func TestRetryPolicyValidation(t *testing.T) {
	as := assert.New(t)

	t.Run("valid_with_max_attempts", func(t *testing.T) {
		p := &api.RetryPolicy{
			ExceptionTypes: []api.ExceptionType{api.StepThrottling},
			MaxAttempts:    3,
		}
		as.NoError(p.Validate())
	})

	t.Run("valid_with_expiry", func(t *testing.T) {
		p := &api.RetryPolicy{
			ExceptionTypes: []api.ExceptionType{api.JobCapacityError},
			ExpireAfterMin: 30,
		}
		as.NoError(p.Validate())
	})

	tests := []struct {
		name   string
		policy *api.RetryPolicy
		err    error
	}{
		{
			name:   "no_exception_types",
			policy: &api.RetryPolicy{MaxAttempts: 3},
			err:    api.ErrExceptionTypeRequired,
		},
		{
			name: "unknown_exception_type",
			policy: &api.RetryPolicy{
				ExceptionTypes: []api.ExceptionType{"Step.UNKNOWN"},
				MaxAttempts:    3,
			},
			err: api.ErrInvalidExceptionType,
		},
		{
			name: "no_stop_condition",
			policy: &api.RetryPolicy{
				ExceptionTypes: []api.ExceptionType{api.StepThrottling},
			},
			err: api.ErrRetryStopCondition,
		},
		{
			name: "both_stop_conditions",
			policy: &api.RetryPolicy{
				ExceptionTypes: []api.ExceptionType{api.StepThrottling},
				MaxAttempts:    3,
				ExpireAfterMin: 30,
			},
			err: api.ErrRetryStopCondition,
		},
		{
			name: "negative_backoff_rate",
			policy: &api.RetryPolicy{
				ExceptionTypes: []api.ExceptionType{api.StepThrottling},
				MaxAttempts:    3,
				BackoffRate:    -1,
			},
			err: api.ErrNegativeBackoffRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			as.ErrorIs(tt.policy.Validate(), tt.err)
		})
	}
}

func TestRetryPolicyRequest(t *testing.T) {
	as := assert.New(t)

	t.Run("defaults_applied", func(t *testing.T) {
		p := &api.RetryPolicy{
			ExceptionTypes: []api.ExceptionType{
				api.StepThrottling,
				api.StepServiceFault,
			},
			MaxAttempts: 5,
		}
		as.Equal(map[string]any{
			"ExceptionType":   []string{"Step.THROTTLING", "Step.SERVICE_FAULT"},
			"BackoffRate":     api.DefaultBackoffRate,
			"IntervalSeconds": api.DefaultIntervalSeconds,
			"MaxAttempts":     5,
		}, p.Request())
	})

	t.Run("expiry_form", func(t *testing.T) {
		p := &api.RetryPolicy{
			ExceptionTypes:  []api.ExceptionType{api.JobInternalError},
			BackoffRate:     1.5,
			IntervalSeconds: 10,
			ExpireAfterMin:  120,
		}
		as.Equal(map[string]any{
			"ExceptionType":   []string{"Job.INTERNAL_ERROR"},
			"BackoffRate":     1.5,
			"IntervalSeconds": int64(10),
			"ExpireAfterMin":  int64(120),
		}, p.Request())
	})
}

func TestRetryPolicyMapValidation(t *testing.T) {
	as := assert.New(t)

	bad := &api.RetryPolicy{MaxAttempts: 3}
	good := &api.RetryPolicy{
		ExceptionTypes: []api.ExceptionType{api.StepThrottling},
		MaxAttempts:    3,
	}

	t.Run("all_buckets_checked", func(t *testing.T) {
		for _, m := range []*api.RetryPolicyMap{
			{CreateModel: []*api.RetryPolicy{bad}},
			{RegisterModel: []*api.RetryPolicy{bad}},
			{RepackModel: []*api.RetryPolicy{bad}},
		} {
			as.ErrorIs(m.Validate(), api.ErrExceptionTypeRequired)
		}
	})

	t.Run("empty_map_valid", func(t *testing.T) {
		as.NoError((&api.RetryPolicyMap{}).Validate())
	})

	t.Run("populated_map_valid", func(t *testing.T) {
		m := &api.RetryPolicyMap{
			CreateModel: []*api.RetryPolicy{good},
			RepackModel: []*api.RetryPolicy{good},
		}
		as.NoError(m.Validate())
	})
}
