// Package builder composes model step requests into concrete step
// collections
//
// Given a create-model or register-model intent, the builder decides which
// sub-steps must be materialized (repack, create, register), wires their
// dependency edges and retry policies, and injects deferred property
// references from repack steps into downstream container arguments
package builder
