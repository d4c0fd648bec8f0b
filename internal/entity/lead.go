package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead statuses. "converted_to_opportunity" is terminal and only ever set
// by the conversion use case.
const (
	LeadStatusNew          = "new"
	LeadStatusAssigned     = "assigned"
	LeadStatusInProcess    = "in_process"
	LeadStatusConverted    = "converted_to_opportunity"
	LeadStatusRecycled     = "recycled"
	LeadStatusDead         = "dead"
	LeadStatusDisqualified = "disqualified"
)

var ErrLeadAlreadyConverted = errors.New("lead has already been converted")

type Lead struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Salutation     string `json:"salutation_name,omitempty"`
	Title          string `json:"title,omitempty"`
	AccountName    string `json:"account_name,omitempty"`
	Website        string `json:"website,omitempty"`
	Industry       string `json:"industry,omitempty"`
	EmailAddress   string `json:"email_address,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Status         string `json:"status"`
	Source         string `json:"source,omitempty"`
	AssignedUserID string `json:"assigned_user_id,omitempty"`
	AssignedEmail  string `json:"assigned_email,omitempty"`
	Description    string `json:"description,omitempty"`

	OpportunityAmount *float64 `json:"opportunity_amount,omitempty"`
	AmountCurrency    string   `json:"opportunity_amount_currency,omitempty"`

	Converted   bool       `json:"converted"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLead(firstName, lastName string) (*Lead, error) {
	lead := &Lead{
		ID:             uuid.New().String(),
		FirstName:      firstName,
		LastName:       lastName,
		Status:         LeadStatusNew,
		AmountCurrency: "USD",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.FirstName == "" && l.LastName == "" {
		return errors.New("lead name is required")
	}
	return nil
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// CanConvert is the idempotency guard. The database row stays the
// authority; this just refuses obviously redundant conversions up front.
func (l *Lead) CanConvert() error {
	if l.Deleted {
		return errors.New("lead is deleted")
	}
	if l.Converted || l.Status == LeadStatusConverted {
		return ErrLeadAlreadyConverted
	}
	return nil
}

// OrganizationName picks the name for the organization a conversion
// creates: the lead's company if known, otherwise derived from the person.
func (l *Lead) OrganizationName() string {
	if l.AccountName != "" {
		return l.AccountName
	}
	return fmt.Sprintf("%s Company", l.FullName())
}

// HasQualifyingAmount reports whether conversion should create an
// opportunity alongside the organization and contact.
func (l *Lead) HasQualifyingAmount() bool {
	return l.OpportunityAmount != nil && *l.OpportunityAmount > 0
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	SoftDelete(ctx context.Context, id string) error
	MarkConverted(ctx context.Context, id string, at time.Time) error
}
