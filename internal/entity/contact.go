package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Salutation     string `json:"salutation_name,omitempty"`
	Title          string `json:"title,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"` // weak reference, lookup only
	EmailAddress   string `json:"email_address,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	DoNotCall      bool   `json:"do_not_call"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
	Description    string `json:"description,omitempty"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewContact(firstName, lastName, organizationID string) (*Contact, error) {
	contact := &Contact{
		ID:             uuid.New().String(),
		FirstName:      firstName,
		LastName:       lastName,
		OrganizationID: organizationID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := contact.Validate(); err != nil {
		return nil, err
	}

	return contact, nil
}

func (c *Contact) Validate() error {
	if c.FirstName == "" && c.LastName == "" {
		return errors.New("contact name is required")
	}
	return nil
}

func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type ContactRepositoryInterface interface {
	Create(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, id string) (*Contact, error)
	List(ctx context.Context, organizationID string, limit, offset int) ([]*Contact, error)
	Update(ctx context.Context, contact *Contact) error
	SoftDelete(ctx context.Context, id string) error
}
