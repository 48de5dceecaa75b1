package models

// Column is a status bucket holding an ordered list of task ids.
type Column struct {
	ID      string     `json:"id" yaml:"id"`
	Title   string     `json:"title" yaml:"title"`
	Status  TaskStatus `json:"status" yaml:"status"`
	Color   string     `json:"color" yaml:"color"`
	TaskIDs []string   `json:"task_ids" yaml:"task_ids"`
}

// Clone returns a copy with its own task id slice.
func (c Column) Clone() Column {
	out := c
	out.TaskIDs = append([]string{}, c.TaskIDs...)
	return out
}
