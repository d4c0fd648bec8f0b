package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Opportunity stages. The dashboard treats everything before closed_won /
// closed_lost as open pipeline.
const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

type Opportunity struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	OrganizationID string  `json:"organization_id,omitempty"` // weak reference
	ContactID      string  `json:"contact_id,omitempty"`      // weak reference
	Amount         float64 `json:"amount"`
	Currency       string  `json:"amount_currency,omitempty"`
	Stage          string  `json:"stage"`
	Probability    int     `json:"probability"`
	LeadSource     string  `json:"lead_source,omitempty"`
	AssignedUserID string  `json:"assigned_user_id,omitempty"`
	Description    string  `json:"description,omitempty"`

	CloseDate time.Time `json:"close_date"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewOpportunity(name, organizationID string, amount float64) (*Opportunity, error) {
	opp := &Opportunity{
		ID:             uuid.New().String(),
		Name:           name,
		OrganizationID: organizationID,
		Amount:         amount,
		Currency:       "USD",
		Stage:          StageProspecting,
		Probability:    10,
		CloseDate:      time.Now().AddDate(0, 0, 30),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := opp.Validate(); err != nil {
		return nil, err
	}

	return opp, nil
}

func (o *Opportunity) Validate() error {
	if o.Name == "" {
		return errors.New("opportunity name is required")
	}
	if o.Amount < 0 {
		return errors.New("opportunity amount must not be negative")
	}
	return nil
}

func (o *Opportunity) IsOpen() bool {
	return o.Stage != StageClosedWon && o.Stage != StageClosedLost
}

type OpportunityRepositoryInterface interface {
	Create(ctx context.Context, opp *Opportunity) error
	FindByID(ctx context.Context, id string) (*Opportunity, error)
	List(ctx context.Context, organizationID string, limit, offset int) ([]*Opportunity, error)
	Update(ctx context.Context, opp *Opportunity) error
	SoftDelete(ctx context.Context, id string) error
}
