package types

// Attachment is a single non-audio file of a submission as declared by the client.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Submission is one user-initiated bundle: an optional voice note plus attached files.
type Submission struct {
	ID          string
	Audio       []byte
	AudioName   string
	Attachments []Attachment
}

func (s Submission) HasAudio() bool { return len(s.Audio) > 0 }
