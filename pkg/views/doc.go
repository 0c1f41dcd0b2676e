// Package views serves forms bound to functions over HTTP. A FormView
// renders its adapted form on GET; on POST it binds the submission, runs the
// bound function with the cleaned data merged over the view's default
// arguments, and redirects on success. Validation and run failures re-render
// the form with the errors in place.
package views
