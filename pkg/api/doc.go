// Package api defines the shared types for model deployment step
// composition: step entities and collections, the tagged model-step request
// union, container payloads, retry policies, and sessions
package api
