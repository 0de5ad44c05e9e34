package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem-reporter/api/internal/pipeline/types"
)

func sampleReport() *types.Report {
	applied := "Riavviato il quadro"
	return &types.Report{
		Type:               types.ArtifactReport,
		Timestamp:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		AudioTranscription: "Il compressore si è fermato due volte",
		FilesAnalyzed:      []types.FileSummary{{Name: "quadro.jpg", Type: types.CategoryImage}},
		ProblemDescription: "Arresto del compressore per sovraccarico",
		UserSolution:       &applied,
		DetailedSolutions: []types.DetailedSolution{{
			Title: "Verifica termica", Description: "Controllare il relè termico",
			Steps: []string{"Misurare la corrente", "Tarare il relè"}, Priority: "alta",
			EstimatedTime: "1 ora", RequiredTools: []string{"Pinza amperometrica"},
		}},
		PreventiveRecommendations: []string{"Pulizia filtri mensile"},
		ManagementSummary:         "Fermo impianto limitato",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	b, err := Render(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	assert.Contains(t, string(b[len(b)-8:]), "%%EOF")
}

func TestHeadingsOrder(t *testing.T) {
	assert.Equal(t, []string{
		HeadProblem, HeadOperator, HeadApplied, HeadSolutions, HeadPreventive, HeadSummary, HeadFiles,
	}, Headings(sampleReport()))
}

func TestHeadingsSkipEmptySections(t *testing.T) {
	r := &types.Report{ProblemDescription: "x", ManagementSummary: "y"}
	assert.Equal(t, []string{HeadProblem, HeadSummary}, Headings(r))

	b, err := Render(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestRenderNil(t *testing.T) {
	_, err := Render(nil)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "report_1709287200000.pdf", Filename(sampleReport()))
}
