package models

import (
	"time"

	"gorm.io/gorm"
)

// Task workflow statuses and priorities.
const (
	StatusToDo       = "to-do"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of work scoped to exactly one board. The board reference
// is fixed at creation. Assignee, reviewer and creator are nullable so the
// rows survive user deletion.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BoardID     uint           `gorm:"index;not null" json:"board"`
	Board       *Board         `gorm:"foreignKey:BoardID" json:"-"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;default:to-do" json:"status"`
	Priority    string         `gorm:"size:10;default:medium" json:"priority"`
	AssigneeID  *uint          `gorm:"index" json:"assignee"`
	Assignee    *User          `gorm:"foreignKey:AssigneeID" json:"-"`
	ReviewerID  *uint          `gorm:"index" json:"reviewer"`
	Reviewer    *User          `gorm:"foreignKey:ReviewerID" json:"-"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedBy   *uint          `json:"created_by"`
	Creator     *User          `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// ValidStatus reports whether s is one of the allowed workflow statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the allowed priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
