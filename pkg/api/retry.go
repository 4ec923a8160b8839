package api

import (
	"errors"
	"fmt"

	"github.com/tapestryml/tapestry/pkg/util"
)

type (
	// ExceptionType names a failure class the platform can retry on
	ExceptionType string

	// RetryPolicy is pure data attached to a step for the remote execution
	// engine to interpret; nothing is retried client-side
	RetryPolicy struct {
		ExceptionTypes  []ExceptionType `json:"exception_types"`
		BackoffRate     float64         `json:"backoff_rate,omitempty"`
		IntervalSeconds int64           `json:"interval_seconds,omitempty"`
		MaxAttempts     int             `json:"max_attempts,omitempty"`
		ExpireAfterMin  int64           `json:"expire_after_min,omitempty"`
	}

	// RetryPolicyMap distributes policies per generated sub-step kind. An
	// absent bucket means no retries for that kind
	RetryPolicyMap struct {
		CreateModel   []*RetryPolicy `json:"create_model_retry_policies,omitempty"`
		RegisterModel []*RetryPolicy `json:"register_model_retry_policies,omitempty"`
		RepackModel   []*RetryPolicy `json:"repack_model_retry_policies,omitempty"`
	}
)

const (
	StepThrottling   ExceptionType = "Step.THROTTLING"
	StepServiceFault ExceptionType = "Step.SERVICE_FAULT"
	JobCapacityError ExceptionType = "Job.CAPACITY_ERROR"
	JobInternalError ExceptionType = "Job.INTERNAL_ERROR"
	JobResourceLimit ExceptionType = "Job.RESOURCE_LIMIT"
)

const (
	DefaultBackoffRate     = 2.0
	DefaultIntervalSeconds = int64(1)
)

var (
	ErrExceptionTypeRequired = errors.New(
		"retry policy requires at least one exception type",
	)
	ErrInvalidExceptionType = errors.New("invalid exception type")
	ErrRetryStopCondition   = errors.New(
		"retry policy requires exactly one of max attempts or expiry",
	)
	ErrNegativeBackoffRate = errors.New("backoff rate cannot be negative")
)

var validExceptionTypes = util.SetOf(
	StepThrottling,
	StepServiceFault,
	JobCapacityError,
	JobInternalError,
	JobResourceLimit,
)

func (r *RetryPolicy) Validate() error {
	if len(r.ExceptionTypes) == 0 {
		return ErrExceptionTypeRequired
	}
	for _, t := range r.ExceptionTypes {
		if !validExceptionTypes.Contains(t) {
			return fmt.Errorf("%w: %s", ErrInvalidExceptionType, t)
		}
	}
	if (r.MaxAttempts > 0) == (r.ExpireAfterMin > 0) {
		return ErrRetryStopCondition
	}
	if r.BackoffRate < 0 {
		return ErrNegativeBackoffRate
	}
	return nil
}

// Request renders the policy into the platform wire shape. Zero-valued
// backoff and interval fall back to the platform defaults
func (r *RetryPolicy) Request() map[string]any {
	types := make([]string, len(r.ExceptionTypes))
	for i, t := range r.ExceptionTypes {
		types[i] = string(t)
	}

	rate := r.BackoffRate
	if rate == 0 {
		rate = DefaultBackoffRate
	}
	interval := r.IntervalSeconds
	if interval == 0 {
		interval = DefaultIntervalSeconds
	}

	res := map[string]any{
		"ExceptionType":   types,
		"BackoffRate":     rate,
		"IntervalSeconds": interval,
	}
	if r.MaxAttempts > 0 {
		res["MaxAttempts"] = r.MaxAttempts
	} else if r.ExpireAfterMin > 0 {
		res["ExpireAfterMin"] = r.ExpireAfterMin
	}
	return res
}

func validatePolicies(policies []*RetryPolicy) error {
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every bucket of the map
func (m *RetryPolicyMap) Validate() error {
	if err := validatePolicies(m.CreateModel); err != nil {
		return err
	}
	if err := validatePolicies(m.RegisterModel); err != nil {
		return err
	}
	return validatePolicies(m.RepackModel)
}
