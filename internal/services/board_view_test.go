package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
)

func viewTasks() map[string]models.Task {
	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	critical := models.Label{ID: "1", Name: "Critical"}
	low := models.Label{ID: "6", Name: "Low"}
	return map[string]models.Task{
		"a": {ID: "a", Title: "SQL Injection", Severity: 8.8, CreatedAt: base, Labels: []models.Label{critical}},
		"b": {ID: "b", Title: "blind sql timing", Severity: 4.5, CreatedAt: base.Add(time.Hour), Labels: []models.Label{low}},
		"c": {ID: "c", Title: "Éclair cache poisoning", Severity: 6.5, CreatedAt: base.Add(2 * time.Hour), Labels: []models.Label{}},
	}
}

func taskIDs(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterTasks_SearchIsCaseInsensitive(t *testing.T) {
	criteria := DefaultViewCriteria()
	criteria.SearchTerm = "sql"
	criteria.SortOrder = SortAsc

	got := FilterTasks(viewTasks(), []string{"a", "b", "c"}, criteria)
	assert.Equal(t, []string{"a", "b"}, taskIDs(got))
}

func TestFilterTasks_LabelFilter(t *testing.T) {
	criteria := DefaultViewCriteria()
	criteria.SelectedLabels = []string{"6", "42"}

	got := FilterTasks(viewTasks(), []string{"a", "b", "c"}, criteria)
	assert.Equal(t, []string{"b"}, taskIDs(got))
}

func TestFilterTasks_Sort(t *testing.T) {
	tests := []struct {
		name  string
		by    SortField
		order SortOrder
		want  []string
	}{
		{"severity desc", SortBySeverity, SortDesc, []string{"a", "c", "b"}},
		{"severity asc", SortBySeverity, SortAsc, []string{"b", "c", "a"}},
		{"date desc", SortByDate, SortDesc, []string{"c", "b", "a"}},
		{"date asc", SortByDate, SortAsc, []string{"a", "b", "c"}},
		{"title asc", SortByTitle, SortAsc, []string{"b", "c", "a"}},
		{"title desc", SortByTitle, SortDesc, []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := ViewCriteria{SortBy: tt.by, SortOrder: tt.order}
			got := FilterTasks(viewTasks(), []string{"a", "b", "c"}, criteria)
			assert.Equal(t, tt.want, taskIDs(got))
		})
	}
}

func TestFilterTasks_SeverityDescOnSeedValues(t *testing.T) {
	tasks := map[string]models.Task{
		"x": {ID: "x", Severity: 8.8},
		"y": {ID: "y", Severity: 4.5},
		"z": {ID: "z", Severity: 6.5},
	}
	got := FilterTasks(tasks, []string{"x", "y", "z"}, ViewCriteria{SortBy: SortBySeverity, SortOrder: SortDesc})

	severities := make([]float64, 0, len(got))
	for _, task := range got {
		severities = append(severities, task.Severity)
	}
	assert.Equal(t, []float64{8.8, 6.5, 4.5}, severities)
}

func TestFilterTasks_StableForEqualKeys(t *testing.T) {
	tasks := map[string]models.Task{
		"p": {ID: "p", Severity: 6.5},
		"q": {ID: "q", Severity: 6.5},
		"r": {ID: "r", Severity: 6.5},
	}
	got := FilterTasks(tasks, []string{"q", "r", "p"}, ViewCriteria{SortBy: SortBySeverity, SortOrder: SortDesc})
	assert.Equal(t, []string{"q", "r", "p"}, taskIDs(got))
}

func TestFilterTasks_SkipsDanglingIDs(t *testing.T) {
	got := FilterTasks(viewTasks(), []string{"a", "missing"}, DefaultViewCriteria())
	assert.Equal(t, []string{"a"}, taskIDs(got))
}

func TestParseSortOption(t *testing.T) {
	by, order, err := ParseSortOption("severity-desc")
	require.NoError(t, err)
	assert.Equal(t, SortBySeverity, by)
	assert.Equal(t, SortDesc, order)

	by, order, err = ParseSortOption("title-asc")
	require.NoError(t, err)
	assert.Equal(t, SortByTitle, by)
	assert.Equal(t, SortAsc, order)

	for _, bad := range []string{"", "severity", "-desc", "severity-up", "cvss-desc"} {
		_, _, err := ParseSortOption(bad)
		assert.ErrorIs(t, err, ErrInvalidSortOption, bad)
	}
}

func TestBoardService_GetBoard(t *testing.T) {
	env := newTestEnv(t)

	view, err := env.boards.GetBoard(testOwner, DefaultViewCriteria())
	require.NoError(t, err)

	require.Len(t, view.Columns, 5)
	statuses := make([]models.TaskStatus, 0, 5)
	for _, col := range view.Columns {
		statuses = append(statuses, col.Column.Status)
	}
	assert.Equal(t, models.TaskStatuses, statuses)

	draft := view.Columns[0]
	assert.Equal(t, "Draft", draft.Column.Title)
	assert.Equal(t, 2, draft.Total)
	assert.Equal(t, []string{"task-1", "task-2"}, taskIDs(draft.Tasks))
	assert.Len(t, view.Labels, 6)
}

func TestBoardService_GetBoard_Filtered(t *testing.T) {
	env := newTestEnv(t)

	criteria := DefaultViewCriteria()
	criteria.SelectedLabels = []string{"3"}
	view, err := env.boards.GetBoard(testOwner, criteria)
	require.NoError(t, err)

	var visible []string
	for _, col := range view.Columns {
		visible = append(visible, taskIDs(col.Tasks)...)
	}
	assert.ElementsMatch(t, []string{"task-3", "task-5"}, visible)
	assert.Equal(t, 2, view.Columns[0].Total)

	_, err = env.boards.GetBoard(testOwner, ViewCriteria{SortBy: "cvss", SortOrder: SortAsc})
	assert.ErrorIs(t, err, ErrInvalidSortOption)
}

func TestBoardService_AddLabel(t *testing.T) {
	env := newTestEnv(t)

	label, err := env.boards.AddLabel(context.Background(), testOwner, AddLabelInput{
		Name: "External", Color: "#1E40AF", Type: models.LabelTypeSource,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^label-\d+$`, label.ID)
	assert.Equal(t, "#1e40af", label.Color)

	labels, err := env.boards.Labels(testOwner)
	require.NoError(t, err)
	assert.Len(t, labels, 7)
	assert.Equal(t, []models.ActivityAction{models.ActivityLabelAdded}, env.activity.actions())

	_, err = env.boards.AddLabel(context.Background(), testOwner, AddLabelInput{Name: "x", Color: "blue", Type: models.LabelTypeSource})
	assert.ErrorIs(t, err, ErrInvalidLabelColor)
	_, err = env.boards.AddLabel(context.Background(), testOwner, AddLabelInput{Name: "x", Color: "#fff", Type: "team"})
	assert.ErrorIs(t, err, ErrInvalidLabelType)
	_, err = env.boards.AddLabel(context.Background(), testOwner, AddLabelInput{Name: " ", Color: "#fff", Type: models.LabelTypeSource})
	assert.ErrorIs(t, err, ErrLabelNameRequired)
}

func TestBoardService_ListActivity(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.tasks.DeleteTask(context.Background(), testOwner, "task-1"))

	entries, total, err := env.boards.ListActivity(context.Background(), testOwner, repository.ActivityFilter{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "task-1", entries[0].TaskID)

	disabled := NewBoardService(env.registry, nil, env.recorder)
	_, _, err = disabled.ListActivity(context.Background(), testOwner, repository.ActivityFilter{Limit: 20})
	assert.ErrorIs(t, err, ErrActivityLogDisabled)
}

func TestBoardService_CloseSessionReseeds(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.tasks.DeleteTask(context.Background(), testOwner, "task-1"))

	env.boards.CloseSession(testOwner)

	_, err := env.tasks.GetTask(testOwner, "task-1")
	assert.NoError(t, err)
}
