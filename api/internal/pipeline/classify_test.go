package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"problem-reporter/api/internal/pipeline/types"
)

func TestClassify(t *testing.T) {
	sheet := &types.SpreadsheetCapture{Filename: "a.xlsx", Rows: [][]string{{"A"}}}
	doc := &types.DocumentCapture{Filename: "b.docx", Text: "x"}
	images := []types.ImageText{{Filename: "f.png", ExtractedText: "t"}}

	cases := []struct {
		name string
		ev   types.ExtractedEvidence
		want types.Mode
	}{
		{"nothing", types.ExtractedEvidence{}, types.ModeReport},
		{"images only", types.ExtractedEvidence{Images: images}, types.ModeReport},
		{"spreadsheet", types.ExtractedEvidence{Spreadsheet: sheet}, types.ModeExcel},
		{"document", types.ExtractedEvidence{Document: doc}, types.ModeWord},
		{"spreadsheet beats document", types.ExtractedEvidence{Spreadsheet: sheet, Document: doc, Images: images}, types.ModeExcel},
		{"document sentinel still counts", types.ExtractedEvidence{Document: &types.DocumentCapture{Text: "[Errore nella lettura del documento]"}}, types.ModeWord},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.ev))
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "report", types.ModeReport.String())
	assert.Equal(t, "modification/excel", types.ModeExcel.String())
	assert.Equal(t, "modification/word", types.ModeWord.String())
}
