package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/seed"
	"github.com/yukikurage/vuln-kanban-api/internal/utils"
)

// MemoryBoard is an in-memory BoardRepository. Every task id appears in
// exactly one column, the one matching the task's status.
type MemoryBoard struct {
	mu       sync.RWMutex
	tasks    map[string]*models.Task
	columns  map[models.TaskStatus]*models.Column
	labels   []models.Label
	taskIDs  *utils.TimestampIDs
	labelIDs *utils.TimestampIDs
	now      func() time.Time
}

// NewMemoryBoard creates a board from seed contents. A nil seed yields the
// five empty columns and an empty catalog.
func NewMemoryBoard(s *seed.Board, now func() time.Time) *MemoryBoard {
	if now == nil {
		now = time.Now
	}
	b := &MemoryBoard{
		tasks:    make(map[string]*models.Task),
		columns:  make(map[models.TaskStatus]*models.Column, len(models.TaskStatuses)),
		taskIDs:  utils.NewTimestampIDs("task"),
		labelIDs: utils.NewTimestampIDs("label"),
		now:      now,
	}

	for _, status := range models.TaskStatuses {
		b.columns[status] = &models.Column{
			ID:      string(status),
			Title:   string(status),
			Status:  status,
			TaskIDs: []string{},
		}
	}
	if s == nil {
		return b
	}

	b.labels = append(b.labels, s.Labels...)
	for _, t := range s.Tasks {
		task := t.Clone()
		b.tasks[task.ID] = &task
	}
	for _, c := range s.Columns {
		col := c.Clone()
		b.columns[col.Status] = &col
	}
	return b
}

func (b *MemoryBoard) AddTask(draft models.TaskDraft) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	col, ok := b.columns[draft.Status]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %q", ErrUnknownStatus, draft.Status)
	}

	now := b.now().UTC()
	id := b.taskIDs.Next(now)
	// Seeded tasks may already hold a timestamp id.
	for b.tasks[id] != nil {
		id = b.taskIDs.Next(now)
	}
	task := models.Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Severity:    draft.Severity,
		Labels:      append([]models.Label{}, draft.Labels...),
		CreatedAt:   now,
		UpdatedAt:   now,
		Assignee:    draft.Assignee,
		Target:      draft.Target,
	}
	task = task.Clone()

	b.tasks[task.ID] = &task
	col.TaskIDs = append(col.TaskIDs, task.ID)
	return task.Clone(), nil
}

func (b *MemoryBoard) UpdateTask(id string, patch models.TaskPatch) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	if patch.Status != nil {
		if _, ok := b.columns[*patch.Status]; !ok {
			return models.Task{}, fmt.Errorf("%w: %q", ErrUnknownStatus, *patch.Status)
		}
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Severity != nil {
		task.Severity = *patch.Severity
	}
	if patch.Labels != nil {
		task.Labels = append([]models.Label{}, (*patch.Labels)...)
	}
	if patch.Assignee != nil {
		a := *patch.Assignee
		task.Assignee = &a
	}
	if patch.Target != nil {
		tg := *patch.Target
		task.Target = &tg
	}
	// A status edit keeps the column invariant by moving the id to the end
	// of the new column.
	if patch.Status != nil && *patch.Status != task.Status {
		b.detach(task)
		target := b.columns[*patch.Status]
		target.TaskIDs = append(target.TaskIDs, task.ID)
		task.Status = *patch.Status
	}
	task.UpdatedAt = b.now().UTC()

	return task.Clone(), nil
}

func (b *MemoryBoard) DeleteTask(id string) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	b.detach(task)
	delete(b.tasks, id)
	return task.Clone(), nil
}

func (b *MemoryBoard) MoveTask(id string, status models.TaskStatus, newIndex int) (models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task, ok := b.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	target, ok := b.columns[status]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	b.detach(task)
	target.TaskIDs = insertAt(target.TaskIDs, newIndex, id)
	task.Status = status
	task.UpdatedAt = b.now().UTC()
	return task.Clone(), nil
}

func (b *MemoryBoard) ReorderColumn(status models.TaskStatus, taskIDs []string) (models.Column, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	col, ok := b.columns[status]
	if !ok {
		return models.Column{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if !isPermutation(col.TaskIDs, taskIDs) {
		return models.Column{}, ErrInvalidReorder
	}
	col.TaskIDs = append([]string{}, taskIDs...)
	return col.Clone(), nil
}

func (b *MemoryBoard) FindTask(id string) (models.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	task, ok := b.tasks[id]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (b *MemoryBoard) Column(status models.TaskStatus) (models.Column, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	col, ok := b.columns[status]
	if !ok {
		return models.Column{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return col.Clone(), nil
}

func (b *MemoryBoard) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := Snapshot{
		Tasks:   make(map[string]models.Task, len(b.tasks)),
		Columns: make([]models.Column, 0, len(models.TaskStatuses)),
		Labels:  append([]models.Label{}, b.labels...),
	}
	for id, t := range b.tasks {
		snap.Tasks[id] = t.Clone()
	}
	for _, status := range models.TaskStatuses {
		snap.Columns = append(snap.Columns, b.columns[status].Clone())
	}
	return snap
}

func (b *MemoryBoard) Labels() []models.Label {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Label{}, b.labels...)
}

func (b *MemoryBoard) FindLabels(ids []string) ([]models.Label, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Label, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, l := range b.labels {
			if l.ID == id {
				out = append(out, l)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrLabelNotFound, id)
		}
	}
	return out, nil
}

func (b *MemoryBoard) AddLabel(label models.Label) models.Label {
	b.mu.Lock()
	defer b.mu.Unlock()

	label.ID = b.labelIDs.Next(b.now())
	for b.hasLabel(label.ID) {
		label.ID = b.labelIDs.Next(b.now())
	}
	b.labels = append(b.labels, label)
	return label
}

func (b *MemoryBoard) hasLabel(id string) bool {
	for _, l := range b.labels {
		if l.ID == id {
			return true
		}
	}
	return false
}

// detach removes the task id from the column of its current status.
// Callers hold the write lock.
func (b *MemoryBoard) detach(task *models.Task) {
	col := b.columns[task.Status]
	ids := col.TaskIDs[:0:0]
	for _, id := range col.TaskIDs {
		if id != task.ID {
			ids = append(ids, id)
		}
	}
	col.TaskIDs = ids
}

// insertAt inserts id at index, clamped to [0, len(ids)].
func insertAt(ids []string, index int, id string) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}

func isPermutation(current, proposed []string) bool {
	if len(current) != len(proposed) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, id := range current {
		counts[id]++
	}
	for _, id := range proposed {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}

// MemoryBoardRegistry keeps one MemoryBoard per owner, seeded lazily.
type MemoryBoardRegistry struct {
	mu     sync.Mutex
	boards map[string]*MemoryBoard
	seed   func() (*seed.Board, error)
	now    func() time.Time
}

// NewMemoryBoardRegistry creates a registry that seeds new boards with seedFn.
func NewMemoryBoardRegistry(seedFn func() (*seed.Board, error), now func() time.Time) *MemoryBoardRegistry {
	return &MemoryBoardRegistry{
		boards: make(map[string]*MemoryBoard),
		seed:   seedFn,
		now:    now,
	}
}

func (r *MemoryBoardRegistry) Board(ownerID string) (BoardRepository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.boards[ownerID]; ok {
		return b, nil
	}

	var s *seed.Board
	if r.seed != nil {
		var err error
		if s, err = r.seed(); err != nil {
			return nil, fmt.Errorf("seed board: %w", err)
		}
	}
	b := NewMemoryBoard(s, r.now)
	r.boards[ownerID] = b
	return b, nil
}

func (r *MemoryBoardRegistry) Drop(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, ownerID)
}
