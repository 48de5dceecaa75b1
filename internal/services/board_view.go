package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortField string

const (
	SortByDate     SortField = "date"
	SortBySeverity SortField = "severity"
	SortByTitle    SortField = "title"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

var ErrInvalidSortOption = errors.New("invalid sort option")

// ViewCriteria are the transient search, label and sort settings of a board read.
type ViewCriteria struct {
	SearchTerm     string    `json:"search_term"`
	SelectedLabels []string  `json:"selected_labels"`
	SortBy         SortField `json:"sort_by"`
	SortOrder      SortOrder `json:"sort_order"`
}

// DefaultViewCriteria sorts newest first with no filters.
func DefaultViewCriteria() ViewCriteria {
	return ViewCriteria{
		SelectedLabels: []string{},
		SortBy:         SortByDate,
		SortOrder:      SortDesc,
	}
}

// Validate reports unknown sort values.
func (c ViewCriteria) Validate() error {
	switch c.SortBy {
	case SortByDate, SortBySeverity, SortByTitle:
	default:
		return fmt.Errorf("%w: sort by %q", ErrInvalidSortOption, c.SortBy)
	}
	switch c.SortOrder {
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("%w: sort order %q", ErrInvalidSortOption, c.SortOrder)
	}
	return nil
}

// ParseSortOption splits a combined "<field>-<order>" option such as "severity-desc".
func ParseSortOption(option string) (SortField, SortOrder, error) {
	i := strings.LastIndex(option, "-")
	if i <= 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortOption, option)
	}
	c := ViewCriteria{SortBy: SortField(option[:i]), SortOrder: SortOrder(option[i+1:])}
	if err := c.Validate(); err != nil {
		return "", "", err
	}
	return c.SortBy, c.SortOrder, nil
}

// FilterTasks projects a column's ids onto the tasks that pass the criteria,
// sorted by the criteria. Ids missing from tasks are skipped. Nothing is cached.
func FilterTasks(tasks map[string]models.Task, ids []string, criteria ViewCriteria) []models.Task {
	fold := cases.Fold()
	term := fold.String(criteria.SearchTerm)

	selected := make(map[string]struct{}, len(criteria.SelectedLabels))
	for _, id := range criteria.SelectedLabels {
		selected[id] = struct{}{}
	}

	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		task, ok := tasks[id]
		if !ok {
			continue
		}
		if term != "" && !strings.Contains(fold.String(task.Title), term) {
			continue
		}
		if len(selected) > 0 && !hasAnyLabel(task, selected) {
			continue
		}
		out = append(out, task)
	}

	compare := comparator(criteria.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if criteria.SortOrder == SortDesc {
			c = -c
		}
		return c < 0
	})
	return out
}

func hasAnyLabel(task models.Task, selected map[string]struct{}) bool {
	for _, l := range task.Labels {
		if _, ok := selected[l.ID]; ok {
			return true
		}
	}
	return false
}

func comparator(field SortField) func(a, b models.Task) int {
	switch field {
	case SortBySeverity:
		return func(a, b models.Task) int {
			switch {
			case a.Severity < b.Severity:
				return -1
			case a.Severity > b.Severity:
				return 1
			}
			return 0
		}
	case SortByTitle:
		col := collate.New(language.English)
		return func(a, b models.Task) int {
			return col.CompareString(a.Title, b.Title)
		}
	default:
		return func(a, b models.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

// ColumnView is one column of a filtered board read.
type ColumnView struct {
	Column models.Column
	Tasks  []models.Task
	Total  int
}

// BoardView is the derived projection of a whole board.
type BoardView struct {
	Columns  []ColumnView
	Labels   []models.Label
	Criteria ViewCriteria
}

// BuildBoardView filters and sorts every column of snap independently.
func BuildBoardView(snap repository.Snapshot, criteria ViewCriteria) BoardView {
	view := BoardView{
		Columns:  make([]ColumnView, 0, len(snap.Columns)),
		Labels:   snap.Labels,
		Criteria: criteria,
	}
	for _, col := range snap.Columns {
		view.Columns = append(view.Columns, ColumnView{
			Column: col,
			Tasks:  FilterTasks(snap.Tasks, col.TaskIDs, criteria),
			Total:  len(col.TaskIDs),
		})
	}
	return view
}
