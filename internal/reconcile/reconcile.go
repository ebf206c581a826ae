package reconcile

import (
	"sort"

	"github.com/eacdc/VoiceNoteTool/internal/backend"
)

// JobListing is the ordered record list the backend returned for one job.
type JobListing struct {
	JobNumber string
	Records   []backend.AudioRecord
}

// IndexEntry groups every record sharing one correlation identifier with
// the set of job numbers the recording appears under.
type IndexEntry struct {
	Records    []backend.AudioRecord
	JobNumbers []string
}

// CommonRecord is a record whose correlation identifier spans two or more
// jobs, tagged with the full job number set it spans.
type CommonRecord struct {
	Record     backend.AudioRecord
	JobNumbers []string
}

// JobGroup holds the records specific to a single job, in backend
// listing order.
type JobGroup struct {
	JobNumber string
	Records   []backend.AudioRecord
}

// Result is the output of one reconciliation pass. Every input record with
// a non-empty correlation identifier appears in exactly one of Common or
// Specific; Skipped counts the records excluded for lacking one.
type Result struct {
	Common   []CommonRecord
	Specific []JobGroup
	Skipped  int

	// Index maps correlationId to its group. Rebuilt on every pass.
	Index map[string]*IndexEntry
}

// Reconcile partitions the supplied listings into common and job-specific
// recordings. Zero listings yield an empty result. Common records are
// ordered by correlation identifier ascending, then by listing order;
// specific groups are ordered by job number ascending with records in
// listing order.
func Reconcile(listings []JobListing) Result {
	result := Result{Index: make(map[string]*IndexEntry)}

	for _, listing := range listings {
		for _, record := range listing.Records {
			if record.CorrelationID == "" {
				result.Skipped++
				continue
			}

			entry, ok := result.Index[record.CorrelationID]
			if !ok {
				entry = &IndexEntry{}
				result.Index[record.CorrelationID] = entry
			}
			entry.Records = append(entry.Records, record)
			if !containsString(entry.JobNumbers, listing.JobNumber) {
				entry.JobNumbers = append(entry.JobNumbers, listing.JobNumber)
			}
		}
	}

	specificByJob := make(map[string][]backend.AudioRecord)

	// Walk listings again so both partitions keep backend listing order.
	for _, listing := range listings {
		for _, record := range listing.Records {
			if record.CorrelationID == "" {
				continue
			}

			entry := result.Index[record.CorrelationID]
			if len(entry.JobNumbers) >= 2 {
				jobNumbers := make([]string, len(entry.JobNumbers))
				copy(jobNumbers, entry.JobNumbers)
				sort.Strings(jobNumbers)
				result.Common = append(result.Common, CommonRecord{
					Record:     record,
					JobNumbers: jobNumbers,
				})
			} else {
				specificByJob[listing.JobNumber] = append(specificByJob[listing.JobNumber], record)
			}
		}
	}

	// Deterministic common order: correlationId ascending, listing order
	// within equal identifiers.
	sort.SliceStable(result.Common, func(i, j int) bool {
		return result.Common[i].Record.CorrelationID < result.Common[j].Record.CorrelationID
	})

	jobNumbers := make([]string, 0, len(specificByJob))
	for jobNumber := range specificByJob {
		jobNumbers = append(jobNumbers, jobNumber)
	}
	sort.Strings(jobNumbers)

	for _, jobNumber := range jobNumbers {
		result.Specific = append(result.Specific, JobGroup{
			JobNumber: jobNumber,
			Records:   specificByJob[jobNumber],
		})
	}

	return result
}

// SpecificCount returns the total number of job-specific records.
func (r Result) SpecificCount() int {
	total := 0
	for _, group := range r.Specific {
		total += len(group.Records)
	}
	return total
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
