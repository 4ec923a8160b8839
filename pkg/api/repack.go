package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// RepackRequest is the training payload of a repack step: it rewrites a
// packed model artifact to include the inference entry-point code before
// the model is created or registered
type RepackRequest struct {
	Role            string         `json:"role,omitempty"`
	ModelData       any            `json:"model_data,omitempty"`
	EntryPoint      string         `json:"entry_point"`
	Bundle          string         `json:"bundle,omitempty"`
	JobName         string         `json:"job_name,omitempty"`
	OutputPath      string         `json:"output_path,omitempty"`
	HyperParameters map[string]any `json:"hyper_parameters,omitempty"`
	Vpc             *VpcConfig     `json:"vpc,omitempty"`
}

var (
	ErrRepackModelData  = errors.New("repack model data required")
	ErrRepackEntryPoint = errors.New("repack entry point empty")
	ErrHyperParameter   = errors.New(
		"hyperparameter value must be a valid JSON document",
	)
)

// Validate checks the payload contract. Concrete hyperparameter values must
// each be a valid JSON document; deferred expressions are checked at
// serialization instead
func (r *RepackRequest) Validate() error {
	if r.ModelData == nil {
		return ErrRepackModelData
	}
	if r.EntryPoint == "" {
		return ErrRepackEntryPoint
	}
	for name, v := range r.HyperParameters {
		s, ok := v.(string)
		if ok && !gjson.Valid(s) {
			return fmt.Errorf("%w: %s", ErrHyperParameter, name)
		}
	}
	return nil
}

func (r *RepackRequest) Arguments() (map[string]any, error) {
	modelData, err := serializeValue(r.ModelData)
	if err != nil {
		return nil, err
	}

	hp := make(map[string]any, len(r.HyperParameters))
	for name, v := range r.HyperParameters {
		val, err := serializeValue(v)
		if err != nil {
			return nil, err
		}
		hp[name] = val
	}

	res := map[string]any{
		"HyperParameters": hp,
		"InputDataConfig": []any{
			map[string]any{
				"DataSource": map[string]any{
					"S3DataSource": map[string]any{
						"S3Uri": modelData,
					},
				},
			},
		},
	}
	if r.Role != "" {
		res["RoleArn"] = r.Role
	}
	if r.JobName != "" {
		res["TrainingJobName"] = r.JobName
	}
	if r.OutputPath != "" {
		res["OutputDataConfig"] = map[string]any{
			"S3OutputPath": r.OutputPath,
		}
	}
	if r.Vpc != nil {
		res["VpcConfig"] = r.Vpc.arguments()
	}
	return res, nil
}
