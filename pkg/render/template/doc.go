// Package template defines the renderer-agnostic template contract. Concrete
// engines live in subpackages; renderers depend only on the interface so the
// engine can be swapped per deployment.
package template
