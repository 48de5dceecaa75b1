package models

import "time"

type ActivityAction string

const (
	ActivityTaskCreated   ActivityAction = "created"
	ActivityTaskUpdated   ActivityAction = "updated"
	ActivityTaskDeleted   ActivityAction = "deleted"
	ActivityTaskMoved     ActivityAction = "moved"
	ActivityTaskReordered ActivityAction = "reordered"
	ActivityLabelAdded    ActivityAction = "label_added"
)

// Activity is one entry of the board audit trail.
type Activity struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	OwnerID    string         `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	TaskID     string         `gorm:"type:varchar(64);index" json:"task_id,omitempty"`
	Action     ActivityAction `gorm:"type:varchar(20);not null" json:"action"`
	FromStatus TaskStatus     `gorm:"type:varchar(20)" json:"from_status,omitempty"`
	ToStatus   TaskStatus     `gorm:"type:varchar(20)" json:"to_status,omitempty"`
	Detail     string         `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (Activity) TableName() string {
	return "board_activities"
}
