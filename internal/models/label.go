package models

type LabelType string

const (
	LabelTypeSeverity LabelType = "severity"
	LabelTypeCategory LabelType = "category"
	LabelTypeSource   LabelType = "source"
)

func (t LabelType) Valid() bool {
	switch t {
	case LabelTypeSeverity, LabelTypeCategory, LabelTypeSource:
		return true
	}
	return false
}

// Label is a tag attached to tasks by value.
type Label struct {
	ID    string    `json:"id" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Color string    `json:"color" yaml:"color"`
	Type  LabelType `json:"type" yaml:"type"`
}
