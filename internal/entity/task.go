package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusNotStarted = "not_started"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCanceled   = "canceled"
)

type Task struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Priority       string `json:"priority,omitempty"`
	ParentType     string `json:"parent_type,omitempty"` // lead, organization, contact, opportunity
	ParentID       string `json:"parent_id,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
	Description    string `json:"description,omitempty"`

	DateEnd *time.Time `json:"date_end,omitempty"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTask(name string) (*Task, error) {
	task := &Task{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    TaskStatusNotStarted,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

func (t *Task) Validate() error {
	if t.Name == "" {
		return errors.New("task name is required")
	}
	return nil
}

func (t *Task) IsOverdue(now time.Time) bool {
	if t.DateEnd == nil {
		return false
	}
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCanceled {
		return false
	}
	return t.DateEnd.Before(now)
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	SoftDelete(ctx context.Context, id string) error
}
