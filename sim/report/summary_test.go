package report

import (
	"bytes"
	"testing"
)

func TestSummarize_EmptyRecords_ZeroValues(t *testing.T) {
	// GIVEN no records
	// WHEN summarized
	summary := Summarize(nil, 0)

	// THEN everything is zero
	if len(summary.Stages) != 0 {
		t.Errorf("expected no stages, got %d", len(summary.Stages))
	}
	if summary.TotalProcessingTime != 0 || summary.IdleTime != 0 {
		t.Error("expected zero processing and idle time")
	}
	if summary.Bottleneck != "" {
		t.Errorf("expected no bottleneck, got %q", summary.Bottleneck)
	}
}

func TestSummarize_MixedOutcomes_CorrectCounts(t *testing.T) {
	// GIVEN completed and deferred records across two stages
	records := []StageRecord{
		{Stage: "Machining", StartTime: 0, EndTime: 2, AdjustedTime: 2, Outcome: OutcomeCompleted},
		{Stage: "Packaging", StartTime: 2, EndTime: 3, AdjustedTime: 1, Outcome: OutcomeCompleted},
		{Stage: "Machining", StartTime: 3, EndTime: 3, AdjustedTime: 2, Outcome: OutcomeDeferred, BlockedBy: "Machine1"},
		{Stage: "Machining", StartTime: 4, EndTime: 8, AdjustedTime: 2, Outcome: OutcomeCompleted},
	}

	// WHEN summarized at clock 10
	summary := Summarize(records, 10)

	// THEN stages keep first-appearance order with correct counts
	if len(summary.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(summary.Stages))
	}
	m := summary.Stages[0]
	if m.Stage != "Machining" || m.Completed != 2 || m.Deferred != 1 {
		t.Errorf("unexpected machining summary: %+v", m)
	}
	if m.TotalTime != 6 || m.MeanDuration != 3 {
		t.Errorf("expected total 6 mean 3, got total %v mean %v", m.TotalTime, m.MeanDuration)
	}
	if m.StdDuration < 1.41 || m.StdDuration > 1.42 {
		t.Errorf("expected sample stddev ~1.414, got %v", m.StdDuration)
	}
	if summary.Stages[1].StdDuration != 0 {
		t.Error("single completion must report zero stddev")
	}

	// THEN totals and bottleneck follow
	if summary.TotalProcessingTime != 7 {
		t.Errorf("expected processing time 7, got %v", summary.TotalProcessingTime)
	}
	if summary.IdleTime != 3 {
		t.Errorf("expected idle time 3, got %v", summary.IdleTime)
	}
	if summary.Bottleneck != "Machining" {
		t.Errorf("expected Machining bottleneck, got %q", summary.Bottleneck)
	}
	if summary.Deferrals != 1 {
		t.Errorf("expected 1 deferral, got %d", summary.Deferrals)
	}
}

func TestSummarize_IdleTimeNeverNegative(t *testing.T) {
	records := []StageRecord{
		{Stage: "A", StartTime: 0, EndTime: 5, Outcome: OutcomeCompleted},
		{Stage: "B", StartTime: 0, EndTime: 5, Outcome: OutcomeCompleted},
	}
	summary := Summarize(records, 5)
	if summary.IdleTime != 0 {
		t.Errorf("expected idle time clamped to 0, got %v", summary.IdleTime)
	}
}

func TestSummary_Print_ContainsStagesAndTotals(t *testing.T) {
	records := []StageRecord{
		{Stage: "Inspecting", StartTime: 0, EndTime: 1, AdjustedTime: 1, Outcome: OutcomeCompleted},
	}
	var buf bytes.Buffer
	Summarize(records, 1).Print(&buf)

	out := buf.String()
	for _, want := range []string{"Production Report", "Inspecting", "Bottleneck Stage", "Total Idle Time"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
