package report

import "testing"

func TestRecorder_Record_PreservesOrder(t *testing.T) {
	// GIVEN a recorder
	r := NewRecorder()

	// WHEN records from two stages arrive
	r.Record(StageRecord{Stage: "Machining", Material: "m1"})
	r.Record(StageRecord{Stage: "Packaging", Material: "m1"})
	r.Record(StageRecord{Stage: "Machining", Material: "m2"})

	// THEN order is preserved and per-stage lookup filters
	if len(r.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(r.Records))
	}
	got := r.ForStage("Machining")
	if len(got) != 2 || got[0].Material != "m1" || got[1].Material != "m2" {
		t.Errorf("unexpected machining records: %+v", got)
	}

	r.Reset()
	if len(r.Records) != 0 {
		t.Error("expected empty recorder after reset")
	}
}

func TestStageRecord_Duration(t *testing.T) {
	rec := StageRecord{StartTime: 1.5, EndTime: 4}
	if rec.Duration() != 2.5 {
		t.Errorf("expected duration 2.5, got %v", rec.Duration())
	}
}

// Recorder must satisfy Sink.
var _ Sink = (*Recorder)(nil)
