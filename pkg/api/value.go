package api

import "github.com/tapestryml/tapestry/pkg/expr"

// serializeValue renders a payload value, expanding an embedded expression
// into its wire form. Concrete values pass through untouched
func serializeValue(v any) (any, error) {
	if e, ok := v.(expr.Expression); ok {
		return e.Serialize()
	}
	return v, nil
}
