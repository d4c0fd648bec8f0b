package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	CallStatusPlanned = "planned"
	CallStatusHeld    = "held"
	CallStatusNotHeld = "not_held"
)

type Call struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Direction      string `json:"direction,omitempty"` // inbound, outbound
	ParentType     string `json:"parent_type,omitempty"`
	ParentID       string `json:"parent_id,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
	Description    string `json:"description,omitempty"`

	DateStart *time.Time `json:"date_start,omitempty"`
	DateEnd   *time.Time `json:"date_end,omitempty"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCall(name string) (*Call, error) {
	call := &Call{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    CallStatusPlanned,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := call.Validate(); err != nil {
		return nil, err
	}

	return call, nil
}

func (c *Call) Validate() error {
	if c.Name == "" {
		return errors.New("call name is required")
	}
	return nil
}

type CallRepositoryInterface interface {
	Create(ctx context.Context, call *Call) error
	FindByID(ctx context.Context, id string) (*Call, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Call, error)
	Update(ctx context.Context, call *Call) error
	SoftDelete(ctx context.Context, id string) error
}
