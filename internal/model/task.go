package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `gorm:"size:100;not null"`
	Description string    `gorm:"not null"`
	Status      string    `gorm:"not null;default:'To-Do'"`
	Priority    string    `gorm:"not null;default:'Medium'"`
	AssignedTo  uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_assigned_to_status"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	Assignee User `gorm:"foreignKey:AssignedTo"`
	Creator  User `gorm:"foreignKey:CreatedBy"`
}

// Статусы задачи
const (
	StatusToDo       = "To-Do"
	StatusInProgress = "In-Progress"
	StatusDone       = "Done"
)

// Приоритеты задачи
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// TitleMaxLength is the hard limit on task titles.
const TitleMaxLength = 100

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title cannot be more than 100 characters")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidStatus       = errors.New("status must be one of To-Do, In-Progress, Done")
	ErrInvalidPriority     = errors.New("priority must be one of Low, Medium, High")
	ErrAssigneeRequired    = errors.New("assigned user is required")
)

func ValidStatus(s string) bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusDone
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Validate checks the task against the write-time field constraints.
// It is re-run after merge-updates so a partial update cannot leave the
// document in an invalid state.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrTitleRequired
	}
	if len(t.Title) > TitleMaxLength {
		return ErrTitleTooLong
	}
	if t.Description == "" {
		return ErrDescriptionRequired
	}
	if !ValidStatus(t.Status) {
		return ErrInvalidStatus
	}
	if !ValidPriority(t.Priority) {
		return ErrInvalidPriority
	}
	if t.AssignedTo == uuid.Nil {
		return ErrAssigneeRequired
	}
	return nil
}
