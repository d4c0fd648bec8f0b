package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Website        string `json:"website,omitempty"`
	Industry       string `json:"industry,omitempty"`
	EmailAddress   string `json:"email_address,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	BillingCity    string `json:"billing_address_city,omitempty"`
	BillingCountry string `json:"billing_address_country,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
	Description    string `json:"description,omitempty"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewOrganization(name string) (*Organization, error) {
	org := &Organization{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := org.Validate(); err != nil {
		return nil, err
	}

	return org, nil
}

func (o *Organization) Validate() error {
	if o.Name == "" {
		return errors.New("organization name is required")
	}
	return nil
}

type OrganizationRepositoryInterface interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context, limit, offset int) ([]*Organization, error)
	Update(ctx context.Context, org *Organization) error
	SoftDelete(ctx context.Context, id string) error
}
