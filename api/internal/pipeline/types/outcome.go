package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Priority values accepted in DetailedSolution.Priority.
const (
	PriorityHigh   = "alta"
	PriorityMedium = "media"
	PriorityLow    = "bassa"
)

type DetailedSolution struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Steps         []string `json:"steps"`
	Priority      string   `json:"priority"`
	EstimatedTime string   `json:"estimatedTime"`
	RequiredTools []string `json:"requiredTools"`
}

// ReportOutcome is the model answer in report mode.
type ReportOutcome struct {
	ProblemDescription        string             `json:"problemDescription"`
	UserSolution              *string            `json:"userSolution"`
	DetailedSolutions         []DetailedSolution `json:"detailedSolutions"`
	PreventiveRecommendations []string           `json:"preventiveRecommendations"`
	ManagementSummary         string             `json:"managementSummary"`
}

// ModificationOutcome is the model answer in modification mode.
type ModificationOutcome struct {
	ModificationType string  `json:"modificationType"`
	NewContent       Content `json:"newContent"`
	Modifications    string  `json:"modifications"`
	Summary          string  `json:"summary"`
}

// Content holds either a row matrix (excel) or a full text (word).
// Both nil means the field was absent or null.
type Content struct {
	Rows [][]string
	Text *string
}

func RowsContent(rows [][]string) Content { return Content{Rows: rows} }

func TextContent(s string) Content { return Content{Text: &s} }

func (c Content) IsZero() bool { return c.Rows == nil && c.Text == nil }

func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case c.Rows != nil:
		return json.Marshal(c.Rows)
	case c.Text != nil:
		return json.Marshal(*c.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, or an array of rows where cells may be
// strings, numbers, booleans or null. A scalar row is read as a one-cell row.
func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = Content{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.Text = &s
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		rows := make([][]string, 0, len(raw))
		for i, r := range raw {
			row, err := decodeRow(r)
			if err != nil {
				return fmt.Errorf("newContent row %d: %w", i, err)
			}
			rows = append(rows, row)
		}
		c.Rows = rows
		return nil
	default:
		return fmt.Errorf("newContent: unsupported JSON value %.20s", string(b))
	}
}

func decodeRow(b json.RawMessage) ([]string, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var cells []any
		if err := json.Unmarshal(b, &cells); err != nil {
			return nil, err
		}
		row := make([]string, len(cells))
		for i, v := range cells {
			row[i] = cellString(v)
		}
		return row, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return []string{cellString(v)}, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
