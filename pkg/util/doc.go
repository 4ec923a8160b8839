// Package util provides small generic helpers shared across the SDK
package util
