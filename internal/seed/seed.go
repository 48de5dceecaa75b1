// Package seed loads the initial board contents every new session starts from.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_board.yaml
var defaultBoard []byte

var (
	ErrMissingColumn   = errors.New("seed: every status needs exactly one column")
	ErrUnknownLabel    = errors.New("seed: task references unknown label")
	ErrUnknownTask     = errors.New("seed: column references unknown task")
	ErrStatusMismatch  = errors.New("seed: task listed under a column with a different status")
	ErrDuplicateTaskID = errors.New("seed: task id listed more than once")
	ErrInvalidStatus   = errors.New("seed: task has an unknown status")
	ErrDuplicateLabel  = errors.New("seed: label id listed more than once")
	ErrInvalidLabel    = errors.New("seed: label needs a name, a hex color and a known type")
)

var labelColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Board is the decoded seed document. Tasks carry label value copies
// resolved from the catalog.
type Board struct {
	Labels  []models.Label
	Columns []models.Column
	Tasks   []models.Task
}

type document struct {
	Labels  []models.Label  `yaml:"labels"`
	Columns []models.Column `yaml:"columns"`
	Tasks   []seedTask      `yaml:"tasks"`
}

type seedTask struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Status      models.TaskStatus `yaml:"status"`
	Severity    float64           `yaml:"severity"`
	LabelIDs    []string          `yaml:"label_ids"`
	CreatedAt   string            `yaml:"created_at"`
	UpdatedAt   string            `yaml:"updated_at"`
	Assignee    *string           `yaml:"assignee"`
	Target      *string           `yaml:"target"`
}

// Default returns the board bundled with the binary.
func Default() (*Board, error) {
	return Parse(defaultBoard)
}

// Load reads a seed file from disk, or the bundled board when path is empty.
func Load(path string) (*Board, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML seed document.
func Parse(data []byte) (*Board, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	catalog := make(map[string]models.Label, len(doc.Labels))
	for _, l := range doc.Labels {
		if err := validateLabel(l); err != nil {
			return nil, err
		}
		if _, dup := catalog[l.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, l.ID)
		}
		catalog[l.ID] = l
	}

	board := &Board{Labels: doc.Labels}
	byID := make(map[string]models.Task, len(doc.Tasks))
	for _, st := range doc.Tasks {
		task, err := st.toTask(catalog)
		if err != nil {
			return nil, err
		}
		if _, dup := byID[task.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, task.ID)
		}
		byID[task.ID] = task
		board.Tasks = append(board.Tasks, task)
	}

	columns, err := buildColumns(doc.Columns, byID)
	if err != nil {
		return nil, err
	}
	board.Columns = columns
	return board, nil
}

func validateLabel(l models.Label) error {
	if strings.TrimSpace(l.ID) == "" || strings.TrimSpace(l.Name) == "" ||
		!labelColor.MatchString(l.Color) || !l.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, l.ID)
	}
	return nil
}

func (st seedTask) toTask(catalog map[string]models.Label) (models.Task, error) {
	if !st.Status.Valid() {
		return models.Task{}, fmt.Errorf("%w: task %s status %q", ErrInvalidStatus, st.ID, st.Status)
	}
	created, err := parseTime(st.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("seed task %s created_at: %w", st.ID, err)
	}
	updated := created
	if st.UpdatedAt != "" {
		if updated, err = parseTime(st.UpdatedAt); err != nil {
			return models.Task{}, fmt.Errorf("seed task %s updated_at: %w", st.ID, err)
		}
	}

	labels := make([]models.Label, 0, len(st.LabelIDs))
	for _, id := range st.LabelIDs {
		l, ok := catalog[id]
		if !ok {
			return models.Task{}, fmt.Errorf("%w: task %s label %s", ErrUnknownLabel, st.ID, id)
		}
		labels = append(labels, l)
	}

	return models.Task{
		ID:          st.ID,
		Title:       st.Title,
		Description: st.Description,
		Status:      st.Status,
		Severity:    st.Severity,
		Labels:      labels,
		CreatedAt:   created,
		UpdatedAt:   updated,
		Assignee:    st.Assignee,
		Target:      st.Target,
	}, nil
}

// buildColumns orders columns by status and appends tasks that no column lists.
func buildColumns(cols []models.Column, tasks map[string]models.Task) ([]models.Column, error) {
	byStatus := make(map[models.TaskStatus]models.Column, len(cols))
	for _, c := range cols {
		if !c.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrMissingColumn, c.Status)
		}
		if _, dup := byStatus[c.Status]; dup {
			return nil, fmt.Errorf("%w: duplicate column for %s", ErrMissingColumn, c.Status)
		}
		byStatus[c.Status] = c
	}

	listed := make(map[string]bool, len(tasks))
	out := make([]models.Column, 0, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		c, ok := byStatus[status]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, status)
		}
		ids := make([]string, 0, len(c.TaskIDs))
		for _, id := range c.TaskIDs {
			task, ok := tasks[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s in %s", ErrUnknownTask, id, status)
			}
			if task.Status != status {
				return nil, fmt.Errorf("%w: %s (%s) in %s", ErrStatusMismatch, id, task.Status, status)
			}
			if listed[id] {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, id)
			}
			listed[id] = true
			ids = append(ids, id)
		}
		c.TaskIDs = ids
		out = append(out, c)
	}

	for i := range out {
		for _, id := range sortedUnlisted(tasks, listed, out[i].Status) {
			out[i].TaskIDs = append(out[i].TaskIDs, id)
		}
	}
	return out, nil
}

// sortedUnlisted returns, oldest first, the ids of tasks with the given status
// that no column listed.
func sortedUnlisted(tasks map[string]models.Task, listed map[string]bool, status models.TaskStatus) []string {
	var pending []models.Task
	for id, t := range tasks {
		if !listed[id] && t.Status == status {
			pending = append(pending, t)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return lessCreated(pending[i], pending[j])
	})
	ids := make([]string, len(pending))
	for i, t := range pending {
		ids[i] = t.ID
	}
	return ids
}

func lessCreated(a, b models.Task) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}
