// Package tapestry is a client-side SDK for composing model deployment step
// collections for a managed ML training and serving platform. It decides
// which concrete steps a model deployment needs (create, register, repack),
// wires their dependency edges and retry policies, and models the deferred
// expressions the platform resolves during pipeline execution.
package tapestry

const (
	Name    = "tapestry"
	Version = "0.1.0"
)
