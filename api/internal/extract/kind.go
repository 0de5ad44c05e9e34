package extract

import (
	"path/filepath"
	"strings"

	"problem-reporter/api/internal/pipeline/types"
)

type fileKind int

const (
	kindOther fileKind = iota
	kindImage
	kindSpreadsheet
	kindDocument
)

func kindOf(a types.Attachment) fileKind {
	mt := strings.ToLower(strings.TrimSpace(a.MimeType))
	ext := Extension(a.Filename)
	switch {
	case strings.Contains(mt, "spreadsheetml"), mt == "application/vnd.ms-excel",
		ext == ".xlsx", ext == ".xlsm", ext == ".xls":
		return kindSpreadsheet
	case strings.Contains(mt, "wordprocessingml"), mt == "application/msword",
		ext == ".docx", ext == ".doc":
		return kindDocument
	case strings.HasPrefix(mt, "image/"):
		return kindImage
	}
	return kindOther
}

func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Summarize builds the coarse file description sent to the model and kept in the report.
func Summarize(a types.Attachment) types.FileSummary {
	mt := strings.ToLower(a.MimeType)
	category := types.CategoryDocument
	switch {
	case strings.HasPrefix(mt, "image/"):
		category = types.CategoryImage
	case strings.HasPrefix(mt, "video/"):
		category = types.CategoryVideo
	case strings.Contains(mt, "pdf"):
		category = types.CategoryPDF
	}
	return types.FileSummary{
		Name:      a.Filename,
		Type:      category,
		Size:      len(a.Data),
		Extension: Extension(a.Filename),
	}
}
