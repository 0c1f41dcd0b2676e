// Package wizard splits one bound function across a sequence of forms. Each
// step binds part of the argument set; cleaned data accumulates in a storage
// backend keyed by a session cookie, and once the last included step passes,
// every step is revalidated and the function runs with the combined data.
//
// Steps may be gated on a condition evaluated against the default arguments
// plus the cleaned data gathered so far, so later steps can appear or
// disappear based on earlier answers.
package wizard
