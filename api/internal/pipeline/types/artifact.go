package types

import "time"

// Wire discriminators for Artifact.
const (
	ArtifactReport           = "report"
	ArtifactFileModification = "file_modification"
)

// Artifact is the final deliverable of a submission: *Report or *FileModification.
type Artifact interface {
	ArtifactType() string
}

type Report struct {
	Type                      string             `json:"type"`
	Timestamp                 time.Time          `json:"timestamp"`
	AudioTranscription        string             `json:"audioTranscription"`
	FilesAnalyzed             []FileSummary      `json:"filesAnalyzed"`
	ExtractedImageTexts       []ImageText        `json:"extractedImageTexts"`
	ProblemDescription        string             `json:"problemDescription"`
	UserSolution              *string            `json:"userSolution"`
	DetailedSolutions         []DetailedSolution `json:"detailedSolutions"`
	PreventiveRecommendations []string           `json:"preventiveRecommendations"`
	ManagementSummary         string             `json:"managementSummary"`
}

func (*Report) ArtifactType() string { return ArtifactReport }

// ChangeStats counts rows (excel) or lines (word) between original and regenerated content.
type ChangeStats struct {
	Inserted  int `json:"inserted"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

type FileModification struct {
	Type                string      `json:"type"`
	FileType            Target      `json:"fileType"`
	OriginalFilename    string      `json:"originalFilename"`
	ModifiedFilename    string      `json:"modifiedFilename"`
	ModifiedFile        []byte      `json:"modifiedFile"` // base64 on the wire
	ContentType         string      `json:"contentType"`
	AudioTranscription  string      `json:"audioTranscription"`
	ExtractedImageTexts []ImageText `json:"extractedImageTexts"`
	Modifications       string      `json:"modifications"`
	Summary             string      `json:"summary"`
	Changes             ChangeStats `json:"changes"`
	Timestamp           time.Time   `json:"timestamp"`
}

func (*FileModification) ArtifactType() string { return ArtifactFileModification }
