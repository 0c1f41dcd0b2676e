// Package objects provides a small queryset layer over database/sql rows and
// the coercions views and argument specs rely on: a primary key, a record, a
// list of either, or an existing queryset all normalise to a Queryset.
package objects
