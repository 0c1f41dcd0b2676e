// Package openapi exposes the public contracts for loading and parsing
// OpenAPI documents, plus the conversion from operations to forms.
// Implementations live under internal/openapi to keep kin-openapi out of the
// public API.
package openapi
