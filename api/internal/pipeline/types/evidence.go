package types

// File categories reported in FileSummary.Type.
const (
	CategoryImage    = "image"
	CategoryVideo    = "video"
	CategoryPDF      = "pdf"
	CategoryDocument = "document"
)

type ImageText struct {
	Filename      string `json:"filename"`
	ExtractedText string `json:"extractedText"`
}

type FileSummary struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      int    `json:"size"`
	Extension string `json:"extension"`
}

// SpreadsheetCapture is the first sheet of the first readable spreadsheet.
type SpreadsheetCapture struct {
	Filename string
	Rows     [][]string
}

// DocumentCapture is the plain text of the first word-processor document.
// Text may be an extraction sentinel.
type DocumentCapture struct {
	Filename string
	Text     string
}

// ExtractedEvidence is the normalized, read-only view over a Submission.
type ExtractedEvidence struct {
	Transcript  string
	Images      []ImageText
	Spreadsheet *SpreadsheetCapture
	Document    *DocumentCapture
	Files       []FileSummary
}
