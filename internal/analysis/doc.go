// Package analysis submits recordings for AI summarization. Analysis is
// strictly advisory: every call is attempted at most once, and a failure
// leaves the summary empty without disturbing the recording or save flow.
package analysis
