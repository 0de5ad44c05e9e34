package types

type ModeKind int

const (
	ReportMode ModeKind = iota
	ModificationMode
)

// Target of a modification. Values double as the wire "modificationType"/"fileType".
type Target string

const (
	TargetNone  Target = ""
	TargetExcel Target = "excel"
	TargetWord  Target = "word"
)

// Mode is computed once per submission and passed along by value.
type Mode struct {
	Kind   ModeKind
	Target Target
}

var (
	ModeReport = Mode{Kind: ReportMode}
	ModeExcel  = Mode{Kind: ModificationMode, Target: TargetExcel}
	ModeWord   = Mode{Kind: ModificationMode, Target: TargetWord}
)

func (m Mode) IsReport() bool { return m.Kind == ReportMode }

func (m Mode) String() string {
	if m.Kind == ReportMode {
		return "report"
	}
	return "modification/" + string(m.Target)
}
