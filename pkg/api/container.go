package api

import "maps"

type (
	// Container describes one serving container of a model. ModelDataUrl
	// holds either a concrete location string or a deferred expression and
	// is the one field the composer may overwrite
	Container struct {
		Image        string            `json:"Image,omitempty"`
		ModelDataUrl any               `json:"ModelDataUrl,omitempty"`
		Environment  map[string]string `json:"Environment,omitempty"`
	}

	// VpcConfig carries the network placement of repack jobs
	VpcConfig struct {
		SecurityGroupIDs []string `json:"SecurityGroupIds,omitempty"`
		Subnets          []string `json:"Subnets,omitempty"`
	}
)

// Clone returns a deep copy of the container
func (c *Container) Clone() *Container {
	res := *c
	res.Environment = maps.Clone(c.Environment)
	return &res
}

func (c *Container) arguments() (map[string]any, error) {
	res := map[string]any{}
	if c.Image != "" {
		res["Image"] = c.Image
	}
	if c.ModelDataUrl != nil {
		u, err := serializeValue(c.ModelDataUrl)
		if err != nil {
			return nil, err
		}
		res["ModelDataUrl"] = u
	}
	if len(c.Environment) > 0 {
		res["Environment"] = maps.Clone(c.Environment)
	}
	return res, nil
}

func cloneContainers(containers []*Container) []*Container {
	if containers == nil {
		return nil
	}
	res := make([]*Container, len(containers))
	for i, c := range containers {
		res[i] = c.Clone()
	}
	return res
}

func containerArguments(containers []*Container) ([]any, error) {
	res := make([]any, len(containers))
	for i, c := range containers {
		args, err := c.arguments()
		if err != nil {
			return nil, err
		}
		res[i] = args
	}
	return res, nil
}

func (v *VpcConfig) arguments() map[string]any {
	res := map[string]any{}
	if len(v.SecurityGroupIDs) > 0 {
		res["SecurityGroupIds"] = v.SecurityGroupIDs
	}
	if len(v.Subnets) > 0 {
		res["Subnets"] = v.Subnets
	}
	return res
}
