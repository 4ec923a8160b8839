package api

type (
	// SessionKind distinguishes pipeline-building sessions from immediate
	// execution sessions
	SessionKind string

	// Session carries the platform context a request was prepared under
	Session struct {
		Kind          SessionKind `json:"kind"`
		DefaultBucket string      `json:"default_bucket,omitempty"`
		Region        string      `json:"region,omitempty"`
	}
)

const (
	// SessionPipeline marks a session used to build pipeline definitions.
	// Property references are only meaningful under this kind
	SessionPipeline SessionKind = "pipeline"

	// SessionRuntime marks a session that executes requests immediately
	SessionRuntime SessionKind = "runtime"
)

// NewPipelineSession creates a pipeline-building session
func NewPipelineSession(bucket, region string) *Session {
	return &Session{
		Kind:          SessionPipeline,
		DefaultBucket: bucket,
		Region:        region,
	}
}

// NewRuntimeSession creates an immediate-execution session
func NewRuntimeSession(bucket, region string) *Session {
	return &Session{
		Kind:          SessionRuntime,
		DefaultBucket: bucket,
		Region:        region,
	}
}

// IsPipeline returns true for pipeline-building sessions
func (s *Session) IsPipeline() bool {
	return s != nil && s.Kind == SessionPipeline
}
