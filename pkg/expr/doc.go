// Package expr models pipeline expressions whose values are unknown until
// the platform's execution engine runs the pipeline definition
//
// Expressions serialize to a JSON-compatible intermediate representation
// ("Get" references, "Std:Join", "Std:JsonGet") and deliberately refuse use
// as native scalars, since no value exists at composition time
package expr
