package api

import (
	"errors"
	"fmt"
	"slices"
)

type (
	// ModelStepRequest is the tagged union handed to the composer: exactly
	// one of Create or Register, plus the owning model reference, the
	// stable container indexes needing a runtime repack, and the session
	// the request was prepared under
	ModelStepRequest struct {
		Create     *CreateModelRequest   `json:"create,omitempty"`
		Register   *RegisterModelRequest `json:"register,omitempty"`
		Model      *ModelRef             `json:"model"`
		NeedRepack []int                 `json:"need_repack,omitempty"`
		Session    *Session              `json:"session"`
	}

	// ModelRef points at the model artifacts a request deploys: a single
	// primary artifact or an ordered group matching the container list
	ModelRef struct {
		Primary *ModelArtifact   `json:"primary,omitempty"`
		Group   []*ModelArtifact `json:"group,omitempty"`
		Role    string           `json:"role,omitempty"`
		Vpc     *VpcConfig       `json:"vpc,omitempty"`
	}

	// ModelArtifact describes one constituent model: its packed data
	// location (concrete or deferred) and the inference code a repack step
	// would fold into it
	ModelArtifact struct {
		Name         string   `json:"name,omitempty"`
		DataURL      any      `json:"data_url,omitempty"`
		EntryPoint   string   `json:"entry_point,omitempty"`
		SourceDir    string   `json:"source_dir,omitempty"`
		Bundle       string   `json:"bundle,omitempty"`
		Dependencies []string `json:"dependencies,omitempty"`
		Role         string   `json:"role,omitempty"`
	}

	// CreateModelRequest is the create-model payload: either a primary
	// container or an ordered container list, never both
	CreateModelRequest struct {
		ExecutionRole          string     `json:"execution_role,omitempty"`
		PrimaryContainer       *Container `json:"primary_container,omitempty"`
		Containers             []*Container `json:"containers,omitempty"`
		Vpc                    *VpcConfig `json:"vpc,omitempty"`
		EnableNetworkIsolation bool       `json:"enable_network_isolation,omitempty"`
	}

	// RegisterModelRequest is the register-model-package payload
	RegisterModelRequest struct {
		ModelPackageGroup string                  `json:"model_package_group"`
		ApprovalStatus    string                  `json:"approval_status,omitempty"`
		Description       string                  `json:"description,omitempty"`
		Inference         *InferenceSpecification `json:"inference"`
	}

	// InferenceSpecification describes how a registered model package
	// serves inference requests
	InferenceSpecification struct {
		Containers             []*Container `json:"containers"`
		SupportedContentTypes  []string     `json:"content_types,omitempty"`
		SupportedResponseTypes []string     `json:"response_types,omitempty"`
		InferenceInstanceTypes []string     `json:"inference_instance_types,omitempty"`
		TransformInstanceTypes []string     `json:"transform_instance_types,omitempty"`
	}
)

// DefaultApprovalStatus is applied when a register request carries none
const DefaultApprovalStatus = "PendingManualApproval"

var (
	ErrRequestExclusive = errors.New(
		"exactly one of the create or register request must be provided",
	)
	ErrModelRequired           = errors.New("model reference required")
	ErrPipelineSessionRequired = errors.New(
		"model step composition requires a pipeline session",
	)
	ErrContainerRequired  = errors.New("at least one container required")
	ErrContainerExclusive = errors.New(
		"primary container and container list are mutually exclusive",
	)
	ErrPackageGroupEmpty = errors.New("model package group empty")
	ErrNeedRepackIndex   = errors.New("need-repack index negative")
)

// Validate checks the request union before any step is built. Terminal:
// a failing request produces no steps at all
func (r *ModelStepRequest) Validate() error {
	if (r.Create == nil) == (r.Register == nil) {
		return ErrRequestExclusive
	}
	if r.Model == nil {
		return ErrModelRequired
	}
	if !r.Session.IsPipeline() {
		return ErrPipelineSessionRequired
	}
	for _, i := range r.NeedRepack {
		if i < 0 {
			return fmt.Errorf("%w: %d", ErrNeedRepackIndex, i)
		}
	}
	if r.Create != nil {
		return r.Create.Validate()
	}
	return r.Register.Validate()
}

// Clone returns a deep copy of the request; the composer patches the copy
// so caller-held containers are never aliased
func (r *ModelStepRequest) Clone() *ModelStepRequest {
	res := *r
	res.NeedRepack = slices.Clone(r.NeedRepack)
	if r.Create != nil {
		res.Create = r.Create.Clone()
	}
	if r.Register != nil {
		res.Register = r.Register.Clone()
	}
	return &res
}

// Artifacts returns the constituent model artifacts in container order.
// Reports false when the model reference has no recognizable shape
func (m *ModelRef) Artifacts() ([]*ModelArtifact, bool) {
	if len(m.Group) > 0 {
		return m.Group, true
	}
	if m.Primary != nil {
		return []*ModelArtifact{m.Primary}, true
	}
	return nil, false
}

// Grouped returns true when the reference carries an ordered artifact group
func (m *ModelRef) Grouped() bool {
	return len(m.Group) > 0
}

func (r *CreateModelRequest) Validate() error {
	if r.PrimaryContainer == nil && len(r.Containers) == 0 {
		return ErrContainerRequired
	}
	if r.PrimaryContainer != nil && len(r.Containers) > 0 {
		return ErrContainerExclusive
	}
	return nil
}

// Clone returns a deep copy of the create request
func (r *CreateModelRequest) Clone() *CreateModelRequest {
	res := *r
	if r.PrimaryContainer != nil {
		res.PrimaryContainer = r.PrimaryContainer.Clone()
	}
	res.Containers = cloneContainers(r.Containers)
	return &res
}

func (r *CreateModelRequest) Arguments() (map[string]any, error) {
	res := map[string]any{}
	if r.ExecutionRole != "" {
		res["ExecutionRoleArn"] = r.ExecutionRole
	}
	if r.PrimaryContainer != nil {
		args, err := r.PrimaryContainer.arguments()
		if err != nil {
			return nil, err
		}
		res["PrimaryContainer"] = args
	}
	if len(r.Containers) > 0 {
		args, err := containerArguments(r.Containers)
		if err != nil {
			return nil, err
		}
		res["Containers"] = args
	}
	if r.Vpc != nil {
		res["VpcConfig"] = r.Vpc.arguments()
	}
	if r.EnableNetworkIsolation {
		res["EnableNetworkIsolation"] = true
	}
	return res, nil
}

func (r *RegisterModelRequest) Validate() error {
	if r.ModelPackageGroup == "" {
		return ErrPackageGroupEmpty
	}
	if r.Inference == nil || len(r.Inference.Containers) == 0 {
		return ErrContainerRequired
	}
	return nil
}

// Clone returns a deep copy of the register request
func (r *RegisterModelRequest) Clone() *RegisterModelRequest {
	res := *r
	if r.Inference != nil {
		inf := *r.Inference
		inf.Containers = cloneContainers(r.Inference.Containers)
		res.Inference = &inf
	}
	return &res
}

func (r *RegisterModelRequest) Arguments() (map[string]any, error) {
	status := r.ApprovalStatus
	if status == "" {
		status = DefaultApprovalStatus
	}

	res := map[string]any{
		"ModelPackageGroupName": r.ModelPackageGroup,
		"ModelApprovalStatus":   status,
	}
	if r.Inference != nil {
		spec, err := r.Inference.arguments()
		if err != nil {
			return nil, err
		}
		res["InferenceSpecification"] = spec
	}
	if r.Description != "" {
		res["ModelPackageDescription"] = r.Description
	}
	return res, nil
}

func (s *InferenceSpecification) arguments() (map[string]any, error) {
	containers, err := containerArguments(s.Containers)
	if err != nil {
		return nil, err
	}

	res := map[string]any{"Containers": containers}
	if len(s.SupportedContentTypes) > 0 {
		res["SupportedContentTypes"] = s.SupportedContentTypes
	}
	if len(s.SupportedResponseTypes) > 0 {
		res["SupportedResponseTypes"] = s.SupportedResponseTypes
	}
	if len(s.InferenceInstanceTypes) > 0 {
		res["SupportedRealtimeInferenceInstanceTypes"] =
			s.InferenceInstanceTypes
	}
	if len(s.TransformInstanceTypes) > 0 {
		res["SupportedTransformInstanceTypes"] = s.TransformInstanceTypes
	}
	return res, nil
}
