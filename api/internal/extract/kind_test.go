package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"problem-reporter/api/internal/pipeline/types"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name, mime string
		want       fileKind
	}{
		{"dati.xlsx", "application/octet-stream", kindSpreadsheet},
		{"dati", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", kindSpreadsheet},
		{"vecchio.xls", "", kindSpreadsheet},
		{"relazione.DOCX", "", kindDocument},
		{"x", "application/msword", kindDocument},
		{"foto.jpg", "image/jpeg", kindImage},
		{"video.mp4", "video/mp4", kindOther},
		{"manuale.pdf", "application/pdf", kindOther},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, kindOf(types.Attachment{Filename: c.name, MimeType: c.mime}), c.name)
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, types.CategoryVideo, Summarize(types.Attachment{Filename: "v.mp4", MimeType: "video/mp4"}).Type)
	assert.Equal(t, types.CategoryImage, Summarize(types.Attachment{Filename: "f.png", MimeType: "image/png"}).Type)
	assert.Equal(t, types.CategoryDocument, Summarize(types.Attachment{Filename: "a.docx"}).Type)
	s := Summarize(types.Attachment{Filename: "Report.PDF", MimeType: "application/pdf", Data: []byte("1234")})
	assert.Equal(t, types.FileSummary{Name: "Report.PDF", Type: types.CategoryPDF, Size: 4, Extension: ".pdf"}, s)
}
