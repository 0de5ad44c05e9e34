package pipeline

import "problem-reporter/api/internal/pipeline/types"

// Classify picks the operating mode from what extraction captured.
// A spreadsheet wins over a document; with neither the submission is a report.
func Classify(ev types.ExtractedEvidence) types.Mode {
	switch {
	case ev.Spreadsheet != nil:
		return types.ModeExcel
	case ev.Document != nil:
		return types.ModeWord
	default:
		return types.ModeReport
	}
}
