// Package argspec describes functions whose arguments carry declarative
// metadata: defaults, lazily computed values, and validators that name the
// arguments they consume. The forms and views packages consume these specs to
// derive web forms and to redistribute validators onto per-field and
// whole-form validation hooks.
package argspec
