package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
)

// DragPhase is the state of an owner's drag gesture.
type DragPhase string

const (
	DragIdle       DragPhase = "idle"
	DragDragging   DragPhase = "dragging"
	DragOverColumn DragPhase = "over-column"
	DragOverTask   DragPhase = "over-task"
)

// DragAction reports what a drag event did to the board.
type DragAction string

const (
	DragActionNone      DragAction = "none"
	DragActionMoved     DragAction = "moved"
	DragActionReordered DragAction = "reordered"
)

var ErrNoActiveDrag = errors.New("no drag in progress")

// DragState is the current drag of one owner.
type DragState struct {
	Phase        DragPhase `json:"phase"`
	ActiveTaskID string    `json:"active_task_id,omitempty"`
	OverID       string    `json:"over_id,omitempty"`
}

// DragOutcome is the result of a drag event.
type DragOutcome struct {
	State  DragState
	Action DragAction
	Task   *models.Task
	Column *models.Column
}

// DragService turns drag gestures into board mutations.
//
// Hovering a column other than the active task's current one moves the task
// to the top of that column right away, before the drop. Dropping onto
// another task of the same column reorders that column.
//
// Gestures of one owner are serialized by that owner's lock, which is held
// across the board mutation. mu only guards the maps and is never held while
// the board or the change sinks are touched.
type DragService struct {
	tasks *TaskService

	mu     sync.Mutex
	states map[string]DragState
	owners map[string]*sync.Mutex
}

// NewDragService creates a new DragService
func NewDragService(tasks *TaskService) *DragService {
	return &DragService{
		tasks:  tasks,
		states: make(map[string]DragState),
		owners: make(map[string]*sync.Mutex),
	}
}

// State returns the owner's drag state
func (s *DragService) State(ownerID string) DragState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(ownerID)
}

// Start marks taskID as the active task
func (s *DragService) Start(ownerID, taskID string) (*DragOutcome, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	task, err := s.tasks.GetTask(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	state := DragState{Phase: DragDragging, ActiveTaskID: task.ID}
	s.store(ownerID, state)
	return &DragOutcome{State: state, Action: DragActionNone, Task: task}, nil
}

// Over handles the pointer entering a column or a task
func (s *DragService) Over(ctx context.Context, ownerID, overID string) (*DragOutcome, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	state := s.State(ownerID)
	if state.ActiveTaskID == "" {
		return nil, ErrNoActiveDrag
	}

	active, err := s.tasks.GetTask(ownerID, state.ActiveTaskID)
	if err != nil {
		// The task was deleted mid-drag.
		s.clear(ownerID)
		return nil, err
	}

	outcome := &DragOutcome{Action: DragActionNone, Task: active}
	state.OverID = overID

	if status := models.TaskStatus(overID); status.Valid() {
		state.Phase = DragOverColumn
		if active.Status != status {
			moved, err := s.tasks.MoveTask(ctx, ownerID, active.ID, status, 0)
			if err != nil {
				return nil, err
			}
			outcome.Action = DragActionMoved
			outcome.Task = moved
		}
	} else if _, err := s.tasks.GetTask(ownerID, overID); err == nil {
		state.Phase = DragOverTask
	} else {
		state.Phase = DragDragging
		state.OverID = ""
	}

	s.store(ownerID, state)
	outcome.State = state
	return outcome, nil
}

// End handles the drop. An empty overID means the task was released
// outside any droppable area.
func (s *DragService) End(ctx context.Context, ownerID, overID string) (*DragOutcome, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	state := s.State(ownerID)
	if state.ActiveTaskID == "" {
		return nil, ErrNoActiveDrag
	}
	s.clear(ownerID)

	outcome := &DragOutcome{State: DragState{Phase: DragIdle}, Action: DragActionNone}
	if overID == "" || overID == state.ActiveTaskID {
		return outcome, nil
	}

	active, err := s.tasks.GetTask(ownerID, state.ActiveTaskID)
	if err != nil {
		return outcome, nil
	}
	outcome.Task = active
	over, err := s.tasks.GetTask(ownerID, overID)
	if err != nil || over.Status != active.Status {
		return outcome, nil
	}

	board, err := s.tasks.board(ownerID)
	if err != nil {
		return nil, err
	}
	col, err := board.Column(active.Status)
	if err != nil {
		return nil, mapBoardError(err)
	}
	order, ok := spliceOrder(col.TaskIDs, active.ID, over.ID)
	if !ok {
		return outcome, nil
	}

	reordered, err := s.tasks.ReorderColumn(ctx, ownerID, active.Status, order)
	if err != nil {
		return nil, err
	}
	outcome.Action = DragActionReordered
	outcome.Column = reordered
	return outcome, nil
}

// Cancel abandons the drag without touching the board
func (s *DragService) Cancel(ownerID string) DragState {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s.clear(ownerID)
	return DragState{Phase: DragIdle}
}

// CloseSession forgets the owner's drag
func (s *DragService) CloseSession(ownerID string) {
	s.Cancel(ownerID)
}

func (s *DragService) stateLocked(ownerID string) DragState {
	state, ok := s.states[ownerID]
	if !ok {
		return DragState{Phase: DragIdle}
	}
	return state
}

func (s *DragService) store(ownerID string, state DragState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[ownerID] = state
}

func (s *DragService) clear(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, ownerID)
}

// ownerLock returns the mutex serializing ownerID's gestures.
func (s *DragService) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.owners[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.owners[ownerID] = lock
	}
	return lock
}

// spliceOrder moves activeID to the position overID holds in ids.
func spliceOrder(ids []string, activeID, overID string) ([]string, bool) {
	from, to := -1, -1
	for i, id := range ids {
		switch id {
		case activeID:
			from = i
		case overID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, false
	}

	out := make([]string, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)
	rest := append([]string{}, out[to:]...)
	out = append(append(out[:to], activeID), rest...)
	return out, true
}
