// Package reconcile classifies voice note records listed across several
// jobs into recordings shared by multiple jobs versus recordings specific
// to a single job. Correlation identifiers assigned at recording time are
// the only grouping key; records without one are counted and skipped.
package reconcile
