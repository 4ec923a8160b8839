package expr

type (
	// PropertyFileRef names a step's property file inside a JsonGet. It is
	// either an inline FileName or a full PropertyFile descriptor
	PropertyFileRef interface {
		propertyFileName() string
	}

	// FileName is an inline property file reference
	FileName string

	// PropertyFile describes a named, structured output artifact of a step
	// from which sub-values can be extracted by path
	PropertyFile struct {
		Name       string
		OutputName string
		Path       string
	}
)

func (n FileName) propertyFileName() string {
	return string(n)
}

func (p *PropertyFile) propertyFileName() string {
	return p.Name
}

// Definition renders the property file declaration consumed by the pipeline
// definition serializer
func (p *PropertyFile) Definition() map[string]any {
	return map[string]any{
		"PropertyFileName": p.Name,
		"OutputName":       p.OutputName,
		"FilePath":         p.Path,
	}
}
