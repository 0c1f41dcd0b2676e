// Package forms models flat web forms and binds them to argument specs. A
// Form is derived from an argspec.Func (one field per argument) or declared
// directly; Adapt redistributes the spec's validators onto per-field checks
// and a whole-form cleaner, and Bind coerces submitted values, enforces
// declarative rules, and runs the attached hooks.
package forms
