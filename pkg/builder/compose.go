package builder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/tapestryml/tapestry/pkg/api"
	"github.com/tapestryml/tapestry/pkg/expr"
	"github.com/tapestryml/tapestry/pkg/log"
	"github.com/tapestryml/tapestry/pkg/util"
)

type (
	// composition accumulates the steps of a single Build call. It owns a
	// clone of the request, so container patches never alias caller state
	composition struct {
		ms      *ModelStep
		req     *api.ModelStepRequest
		buckets *api.RetryPolicyMap
		steps   []*api.Step
		patches []containerPatch
		// repacked suppresses explicit dependency edges on the
		// create/register step; its ordering constraint flows through the
		// patched ModelDataUrl reference instead
		repacked bool
	}

	// containerPatch overwrites one container's ModelDataUrl with the
	// repacked artifact location
	containerPatch struct {
		index int
		value expr.Expression
	}
)

// repackDescription is attached to every generated repack step
const repackDescription = "Used to repack a model with customer scripts " +
	"for a register/create model step"

func (c *composition) appendRepackSteps() {
	artifacts, ok := c.req.Model.Artifacts()
	if !ok {
		// Accepted legacy behavior: an unrecognized model reference skips
		// repacking instead of failing the composition
		slog.Warn("No models to repack", log.Collection(c.ms.name))
		return
	}

	need := util.SetOf(c.req.NeedRepack...)
	for i, artifact := range artifacts {
		if need.Contains(i) {
			c.appendRepackStep(i, artifact)
		}
	}
	c.applyPatches()
}

func (c *composition) appendRepackStep(i int, artifact *api.ModelArtifact) {
	base := artifact.Name
	if base == "" {
		base = strconv.Itoa(i)
	}
	name := fmt.Sprintf("%s-%s-%s", c.ms.name, api.RepackModelNameBase, base)

	c.steps = append(c.steps, &api.Step{
		Name:          name,
		Type:          api.StepTypeRepackModel,
		Description:   repackDescription,
		DependsOn:     slices.Clone(c.ms.dependsOn),
		RetryPolicies: c.buckets.RepackModel,
		Request:       c.repackRequest(artifact),
	})
	c.patches = append(c.patches, containerPatch{
		index: i,
		value: expr.StepProperty(name, "ModelArtifacts.S3ModelArtifacts"),
	})
	c.repacked = true
}

func (c *composition) repackRequest(
	artifact *api.ModelArtifact,
) *api.RepackRequest {
	role := c.req.Model.Role
	if role == "" {
		role = artifact.Role
	}
	return &api.RepackRequest{
		Role:            role,
		ModelData:       artifact.DataURL,
		EntryPoint:      artifact.EntryPoint,
		Bundle:          artifact.Bundle,
		JobName:         "repack-" + uuid.NewString(),
		OutputPath:      c.outputPath(),
		HyperParameters: repackHyperParameters(artifact),
		Vpc:             c.req.Model.Vpc,
	}
}

func (c *composition) outputPath() string {
	s := c.req.Session
	if s == nil || s.DefaultBucket == "" {
		return ""
	}
	return fmt.Sprintf("s3://%s/%s/repack", s.DefaultBucket, c.ms.name)
}

// repackHyperParameters encodes the repack job inputs. Every concrete value
// is a JSON document per the platform contract; the model archive may stay
// a deferred expression
func repackHyperParameters(artifact *api.ModelArtifact) map[string]any {
	return map[string]any{
		"inference_script": jsonEncode(path.Base(artifact.EntryPoint)),
		"model_archive":    artifact.DataURL,
		"submit_directory": jsonEncode(artifact.Bundle),
		"dependencies":     jsonEncode(artifact.Dependencies),
	}
}

func jsonEncode(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// applyPatches rewires the pending create/register payload to consume the
// repacked artifacts. Runs before the create/register step is built
func (c *composition) applyPatches() {
	for _, p := range c.patches {
		if container := c.containerAt(p.index); container != nil {
			container.ModelDataUrl = p.value
		}
	}
	c.patches = nil
}

func (c *composition) containerAt(i int) *api.Container {
	if c.req.Register != nil {
		containers := c.req.Register.Inference.Containers
		if i < len(containers) {
			return containers[i]
		}
		return nil
	}
	if c.req.Model.Grouped() {
		if i < len(c.req.Create.Containers) {
			return c.req.Create.Containers[i]
		}
		return nil
	}
	return c.req.Create.PrimaryContainer
}

func (c *composition) appendRegisterStep() {
	step := &api.Step{
		Name:          c.ms.name + "-" + api.RegisterModelNameBase,
		Type:          api.StepTypeRegisterModel,
		DisplayName:   c.ms.displayName,
		Description:   c.ms.description,
		RetryPolicies: c.buckets.RegisterModel,
		Request:       c.req.Register,
	}
	if !c.repacked {
		step.DependsOn = slices.Clone(c.ms.dependsOn)
	}
	c.steps = append(c.steps, step)
}

func (c *composition) appendCreateStep() {
	step := &api.Step{
		Name:          c.ms.name + "-" + api.CreateModelNameBase,
		Type:          api.StepTypeCreateModel,
		DisplayName:   c.ms.displayName,
		Description:   c.ms.description,
		RetryPolicies: c.buckets.CreateModel,
		Request:       c.req.Create,
	}
	if !c.repacked {
		step.DependsOn = slices.Clone(c.ms.dependsOn)
	}
	c.steps = append(c.steps, step)
}
