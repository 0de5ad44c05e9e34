package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"problem-reporter/api/internal/pipeline/types"
)

func TestBuildPromptReportEmptyMarkers(t *testing.T) {
	p := BuildPrompt(types.ModeReport, types.ExtractedEvidence{})

	assert.Contains(t, p, `TRASCRIZIONE AUDIO: "(nessuno)"`)
	assert.Contains(t, p, "TESTO ESTRATTO DALLE IMMAGINI:\n(nessuno)")
	assert.Contains(t, p, "FILE ALLEGATI:\n(nessuno)")
	assert.Contains(t, p, `"detailedSolutions"`)
	assert.Contains(t, p, `"managementSummary"`)
	assert.Contains(t, p, "Almeno due soluzioni")
}

func TestBuildPromptReportEvidence(t *testing.T) {
	ev := types.ExtractedEvidence{
		Transcript: "la pompa perde olio",
		Images:     []types.ImageText{{Filename: "targa.jpg", ExtractedText: "MOD. P-200"}},
		Files:      []types.FileSummary{{Name: "targa.jpg", Type: types.CategoryImage}, {Name: "video.mp4", Type: types.CategoryVideo}},
	}
	p := BuildPrompt(types.ModeReport, ev)

	assert.Contains(t, p, `TRASCRIZIONE AUDIO: "la pompa perde olio"`)
	assert.Contains(t, p, "- targa.jpg: MOD. P-200")
	assert.Contains(t, p, "- video.mp4 (video)")
	assert.NotContains(t, p, "(nessuno)")
}

func TestBuildPromptExcel(t *testing.T) {
	ev := types.ExtractedEvidence{
		Transcript:  "aggiungi una riga",
		Spreadsheet: &types.SpreadsheetCapture{Filename: "dati.xlsx", Rows: [][]string{{"A", "B"}, {"1", "2"}}},
	}
	p := BuildPrompt(types.ModeExcel, ev)

	assert.Contains(t, p, "FOGLIO DI CALCOLO ESISTENTE (dati.xlsx):\nA | B\n1 | 2\n")
	assert.Contains(t, p, `"modificationType": "excel"`)
	assert.NotContains(t, p, "FILE ALLEGATI")
}

func TestBuildPromptWord(t *testing.T) {
	ev := types.ExtractedEvidence{Document: &types.DocumentCapture{Filename: "nota.docx", Text: "Riga1\nRiga2"}}
	p := BuildPrompt(types.ModeWord, ev)

	assert.Contains(t, p, "DOCUMENTO ESISTENTE (nota.docx):\nRiga1\nRiga2\n")
	assert.Contains(t, p, `"modificationType": "word"`)
	assert.Equal(t, 1, strings.Count(p, `TRASCRIZIONE AUDIO: "(nessuno)"`))
}
