package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var summaryHeader = []string{
	"Test Map Name", "Planner", "Distance Threshold", "Rate", "Path Cost", "Iterations",
	"Time Cost", "Canceled Iterations", "Explored Cells", "No. Trials", "Solved",
}

var trialHeader = []string{
	"Test Map Name", "Planner", "Trial", "Distance Threshold", "Rate", "Path Cost", "Iterations",
	"Time Cost", "Canceled Iterations", "Explored Cells", "Status",
}

// WriteSummaryCSV writes one row per (map, planner) summary.
func WriteSummaryCSV(w io.Writer, summaries []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			s.Map,
			s.Planner,
			formatFloat(s.DistanceThreshold),
			formatFloat(s.Rate),
			formatFloat(s.Cost),
			formatFloat(s.Iterations),
			formatFloat(s.Elapsed.Seconds()),
			formatFloat(s.Canceled),
			formatFloat(s.Explored),
			strconv.Itoa(s.Trials),
			strconv.Itoa(s.Solved),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTrialCSV writes every trial record as its own row.
func WriteTrialCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trialHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Map,
			r.Planner,
			strconv.Itoa(r.Trial),
			formatFloat(r.DistanceThreshold),
			formatFloat(r.Rate),
			formatFloat(r.Cost),
			strconv.Itoa(r.Iterations),
			formatFloat(r.Elapsed.Seconds()),
			strconv.Itoa(r.Canceled),
			strconv.Itoa(r.Explored),
			r.Status.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
