package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StageSummary aggregates the records of one stage.
type StageSummary struct {
	Stage        string
	Completed    int
	Deferred     int
	TotalTime    float64 // sum of completed durations
	MeanDuration float64
	StdDuration  float64 // 0 when fewer than two completions
	AdjustedTime float64 // adjusted operation time reported by the stage
}

// Summary aggregates a whole run.
type Summary struct {
	Stages              []StageSummary // in order of first appearance
	TotalProcessingTime float64
	IdleTime            float64 // clock time not spent processing, never negative
	ElapsedTime         float64
	Bottleneck          string // stage with the largest total processing time
	Deferrals           int
}

// Summarize computes per-stage statistics from records. elapsed is the
// simulation clock at the end of the run.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(records []StageRecord, elapsed float64) *Summary {
	summary := &Summary{Stages: make([]StageSummary, 0), ElapsedTime: elapsed}

	order := make([]string, 0)
	durations := make(map[string][]float64)
	byStage := make(map[string]*StageSummary)
	for _, rec := range records {
		s, ok := byStage[rec.Stage]
		if !ok {
			s = &StageSummary{Stage: rec.Stage}
			byStage[rec.Stage] = s
			order = append(order, rec.Stage)
		}
		s.AdjustedTime = rec.AdjustedTime
		switch rec.Outcome {
		case OutcomeCompleted:
			s.Completed++
			durations[rec.Stage] = append(durations[rec.Stage], rec.Duration())
		case OutcomeDeferred:
			s.Deferred++
			summary.Deferrals++
		}
	}

	best := -1.0
	for _, name := range order {
		s := byStage[name]
		if d := durations[name]; len(d) > 0 {
			s.TotalTime = floats.Sum(d)
			s.MeanDuration = stat.Mean(d, nil)
			if len(d) > 1 {
				s.StdDuration = stat.StdDev(d, nil)
			}
		}
		summary.TotalProcessingTime += s.TotalTime
		if s.TotalTime > best {
			best = s.TotalTime
			summary.Bottleneck = name
		}
		summary.Stages = append(summary.Stages, *s)
	}

	summary.IdleTime = max(0, elapsed-summary.TotalProcessingTime)
	return summary
}

// Print writes a human-readable table of the summary.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Production Report ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Stage\tCompleted\tDeferred\tAdjusted Time\tMean\tTotal")
	for _, st := range s.Stages {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.6f\t%.6f\t%.6f\n",
			st.Stage, st.Completed, st.Deferred, st.AdjustedTime, st.MeanDuration, st.TotalTime)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Bottleneck Stage      : %s\n", s.Bottleneck)
	fmt.Fprintf(w, "Total Processing Time : %.6f\n", s.TotalProcessingTime)
	fmt.Fprintf(w, "Total Idle Time       : %.6f\n", s.IdleTime)
	fmt.Fprintf(w, "Elapsed Time          : %.6f\n", s.ElapsedTime)
	fmt.Fprintf(w, "Deferrals             : %d\n", s.Deferrals)
}
