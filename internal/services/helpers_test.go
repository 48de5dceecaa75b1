package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
	"github.com/yukikurage/vuln-kanban-api/internal/seed"
)

const testOwner = "owner-1"

// memoryActivity records created entries and optionally fails.
type memoryActivity struct {
	mu      sync.Mutex
	entries []models.Activity
	err     error
}

func (m *memoryActivity) Create(_ context.Context, a *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a.ID = uint64(len(m.entries) + 1)
	m.entries = append(m.entries, *a)
	return nil
}

func (m *memoryActivity) ListByOwner(_ context.Context, ownerID string, filter repository.ActivityFilter) ([]models.Activity, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Activity
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].OwnerID == ownerID {
			out = append(out, m.entries[i])
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryActivity) actions() []models.ActivityAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ActivityAction, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

// recordingPublisher keeps published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []BoardEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e BoardEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type stubExtractor struct {
	findings []GeneratedFinding
	err      error
}

func (s stubExtractor) ExtractFindings(context.Context, string) ([]GeneratedFinding, error) {
	return s.findings, s.err
}

var errSinkDown = errors.New("sink down")

type testEnv struct {
	registry  *repository.MemoryBoardRegistry
	activity  *memoryActivity
	publisher *recordingPublisher
	recorder  *ChangeRecorder
	tasks     *TaskService
	boards    *BoardService
	drag      *DragService
	logHook   *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	env := &testEnv{
		registry:  repository.NewMemoryBoardRegistry(seed.Default, now),
		activity:  &memoryActivity{},
		publisher: &recordingPublisher{},
		logHook:   hook,
	}
	env.recorder = NewChangeRecorder(env.activity, env.publisher, logger)
	env.tasks = NewTaskService(env.registry, env.recorder, nil)
	env.boards = NewBoardService(env.registry, env.activity, env.recorder)
	env.drag = NewDragService(env.tasks)
	return env
}

func (e *testEnv) columnIDs(t *testing.T, status models.TaskStatus) []string {
	t.Helper()
	board, err := e.registry.Board(testOwner)
	if err != nil {
		t.Fatalf("load board: %v", err)
	}
	col, err := board.Column(status)
	if err != nil {
		t.Fatalf("load column: %v", err)
	}
	return col.TaskIDs
}
