package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ActivityRepositoryTestSuite runs the repository against in-memory SQLite
type ActivityRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo ActivityRepository
}

func (s *ActivityRepositoryTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(s.db.AutoMigrate(&models.Activity{}))
	s.repo = NewActivityRepository(s.db)
}

func (s *ActivityRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *ActivityRepositoryTestSuite) createActivity(owner, taskID string, action models.ActivityAction, at time.Time) {
	s.Require().NoError(s.repo.Create(context.Background(), &models.Activity{
		OwnerID:   owner,
		TaskID:    taskID,
		Action:    action,
		CreatedAt: at,
	}))
}

func (s *ActivityRepositoryTestSuite) TestListByOwner_NewestFirst() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.createActivity("alice", "task-1", models.ActivityTaskCreated, base)
	s.createActivity("alice", "task-1", models.ActivityTaskMoved, base.Add(time.Minute))
	s.createActivity("alice", "task-2", models.ActivityTaskDeleted, base.Add(2*time.Minute))
	s.createActivity("bob", "task-1", models.ActivityTaskCreated, base)

	activities, total, err := s.repo.ListByOwner(context.Background(), "alice", ActivityFilter{})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(activities, 3)
	s.Equal(models.ActivityTaskDeleted, activities[0].Action)
	s.Equal(models.ActivityTaskCreated, activities[2].Action)
}

func (s *ActivityRepositoryTestSuite) TestListByOwner_FilterAndPaginate() {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.createActivity("alice", "task-1", models.ActivityTaskUpdated, base.Add(time.Duration(i)*time.Minute))
	}
	s.createActivity("alice", "task-2", models.ActivityTaskUpdated, base)

	activities, total, err := s.repo.ListByOwner(context.Background(), "alice", ActivityFilter{TaskID: "task-1", Offset: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Require().Len(activities, 2)
	s.Equal(base.Add(2*time.Minute), activities[0].CreatedAt.UTC())
}

func TestActivityRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityRepositoryTestSuite))
}

func TestGormActivityRepository_Create_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `board_activities`")).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	activity := &models.Activity{OwnerID: "alice", TaskID: "task-1", Action: models.ActivityTaskCreated}
	if err := NewActivityRepository(db).Create(context.Background(), activity); err != nil {
		t.Fatalf("create: %v", err)
	}
	if activity.ID != 42 {
		t.Fatalf("expected id 42, got %d", activity.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
