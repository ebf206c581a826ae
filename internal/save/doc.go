// Package save fans one recording out to every selected job as
// independent persistence requests sharing a single correlation
// identifier, and aggregates partial outcomes without cancelling
// sibling requests on failure.
package save
