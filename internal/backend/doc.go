// Package backend provides the HTTP client for the job-tracking API:
// authentication, job number search, job details, and voice note
// persistence, listing, lazy audio fetch, and analysis.
package backend
