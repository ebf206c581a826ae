package reconcile

import (
	"reflect"
	"testing"

	"github.com/eacdc/VoiceNoteTool/internal/backend"
)

func record(id, cid, jobNumber string) backend.AudioRecord {
	return backend.AudioRecord{ID: id, CorrelationID: cid, JobNumber: jobNumber}
}

func TestReconcileEmpty(t *testing.T) {
	result := Reconcile(nil)

	if len(result.Common) != 0 || len(result.Specific) != 0 || result.Skipped != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestReconcileCardinality(t *testing.T) {
	// corr-shared spans jobs 1001 and 1002; corr-solo appears only under 1001.
	listings := []JobListing{
		{JobNumber: "1001", Records: []backend.AudioRecord{
			record("r1", "corr-shared", "1001"),
			record("r2", "corr-solo", "1001"),
		}},
		{JobNumber: "1002", Records: []backend.AudioRecord{
			record("r3", "corr-shared", "1002"),
		}},
	}

	result := Reconcile(listings)

	if len(result.Common) != 2 {
		t.Fatalf("expected 2 common records, got %d", len(result.Common))
	}
	for _, c := range result.Common {
		if c.Record.CorrelationID != "corr-shared" {
			t.Errorf("unexpected common record %+v", c.Record)
		}
		if !reflect.DeepEqual(c.JobNumbers, []string{"1001", "1002"}) {
			t.Errorf("common record tagged with %v, want [1001 1002]", c.JobNumbers)
		}
	}

	if len(result.Specific) != 1 {
		t.Fatalf("expected 1 specific group, got %d", len(result.Specific))
	}
	group := result.Specific[0]
	if group.JobNumber != "1001" || len(group.Records) != 1 || group.Records[0].ID != "r2" {
		t.Errorf("unexpected specific group %+v", group)
	}
}

func TestReconcileGroupingLaw(t *testing.T) {
	// Mixed bag: shared, solo, and legacy records without identifiers.
	listings := []JobListing{
		{JobNumber: "2002", Records: []backend.AudioRecord{
			record("a1", "corr-x", "2002"),
			record("a2", "", "2002"),
			record("a3", "corr-y", "2002"),
		}},
		{JobNumber: "2001", Records: []backend.AudioRecord{
			record("b1", "corr-x", "2001"),
			record("b2", "corr-z", "2001"),
			record("b3", "", "2001"),
		}},
		{JobNumber: "2003", Records: []backend.AudioRecord{
			record("c1", "corr-y", "2003"),
		}},
	}

	result := Reconcile(listings)

	withID := 0
	for _, listing := range listings {
		for _, r := range listing.Records {
			if r.CorrelationID != "" {
				withID++
			}
		}
	}

	if got := len(result.Common) + result.SpecificCount(); got != withID {
		t.Errorf("partition law violated: %d common + specific, %d records with identifiers", got, withID)
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped records, got %d", result.Skipped)
	}

	// Every correlationId lands in exactly one partition.
	commonIDs := map[string]bool{}
	for _, c := range result.Common {
		commonIDs[c.Record.CorrelationID] = true
	}
	for _, group := range result.Specific {
		for _, r := range group.Records {
			if commonIDs[r.CorrelationID] {
				t.Errorf("correlationId %q present in both partitions", r.CorrelationID)
			}
		}
	}
}

func TestReconcileCommonOrdering(t *testing.T) {
	// Discovery order deliberately does not match identifier order.
	listings := []JobListing{
		{JobNumber: "1001", Records: []backend.AudioRecord{
			record("r1", "corr-b", "1001"),
			record("r2", "corr-a", "1001"),
		}},
		{JobNumber: "1002", Records: []backend.AudioRecord{
			record("r3", "corr-b", "1002"),
			record("r4", "corr-a", "1002"),
		}},
	}

	result := Reconcile(listings)

	if len(result.Common) != 4 {
		t.Fatalf("expected 4 common records, got %d", len(result.Common))
	}

	gotIDs := make([]string, len(result.Common))
	for i, c := range result.Common {
		gotIDs[i] = c.Record.CorrelationID
	}
	want := []string{"corr-a", "corr-a", "corr-b", "corr-b"}
	if !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("common order %v, want %v", gotIDs, want)
	}

	// Within one identifier, listing order survives the sort.
	if result.Common[0].Record.ID != "r2" || result.Common[1].Record.ID != "r4" {
		t.Errorf("listing order lost within corr-a: %s, %s",
			result.Common[0].Record.ID, result.Common[1].Record.ID)
	}
}

func TestReconcileSpecificOrdering(t *testing.T) {
	listings := []JobListing{
		{JobNumber: "3002", Records: []backend.AudioRecord{
			record("r1", "corr-1", "3002"),
			record("r2", "corr-2", "3002"),
		}},
		{JobNumber: "3001", Records: []backend.AudioRecord{
			record("r3", "corr-3", "3001"),
		}},
	}

	result := Reconcile(listings)

	if len(result.Specific) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Specific))
	}
	if result.Specific[0].JobNumber != "3001" || result.Specific[1].JobNumber != "3002" {
		t.Errorf("groups not sorted by job number: %s, %s",
			result.Specific[0].JobNumber, result.Specific[1].JobNumber)
	}

	// Backend listing order preserved inside the 3002 group.
	group := result.Specific[1]
	if group.Records[0].ID != "r1" || group.Records[1].ID != "r2" {
		t.Errorf("listing order lost: %+v", group.Records)
	}
}

func TestReconcileAllMissingIdentifiers(t *testing.T) {
	listings := []JobListing{
		{JobNumber: "1001", Records: []backend.AudioRecord{
			record("r1", "", "1001"),
			record("r2", "", "1001"),
		}},
	}

	result := Reconcile(listings)

	if len(result.Common) != 0 || len(result.Specific) != 0 {
		t.Errorf("expected empty partitions, got %+v", result)
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", result.Skipped)
	}
}

func TestReconcileIndex(t *testing.T) {
	listings := []JobListing{
		{JobNumber: "1001", Records: []backend.AudioRecord{record("r1", "corr-1", "1001")}},
		{JobNumber: "1002", Records: []backend.AudioRecord{record("r2", "corr-1", "1002")}},
	}

	result := Reconcile(listings)

	entry, ok := result.Index["corr-1"]
	if !ok {
		t.Fatal("index missing corr-1")
	}
	if len(entry.Records) != 2 {
		t.Errorf("expected 2 records in index entry, got %d", len(entry.Records))
	}
	if !reflect.DeepEqual(entry.JobNumbers, []string{"1001", "1002"}) {
		t.Errorf("unexpected job set %v", entry.JobNumbers)
	}
}
