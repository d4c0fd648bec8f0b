package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLeadDefaults(t *testing.T) {
	lead, err := NewLead("Maria", "Silva")

	assert.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, LeadStatusNew, lead.Status)
	assert.Equal(t, "USD", lead.AmountCurrency)
	assert.Equal(t, "Maria Silva", lead.FullName())
}

func TestNewLeadRequiresAName(t *testing.T) {
	_, err := NewLead("", "")
	assert.Error(t, err)

	// either half is enough
	_, err = NewLead("", "Silva")
	assert.NoError(t, err)
}

func TestCanConvertGuard(t *testing.T) {
	lead, _ := NewLead("Maria", "Silva")
	assert.NoError(t, lead.CanConvert())

	lead.Converted = true
	assert.Equal(t, ErrLeadAlreadyConverted, lead.CanConvert())

	lead.Converted = false
	lead.Status = LeadStatusConverted
	assert.Equal(t, ErrLeadAlreadyConverted, lead.CanConvert())

	lead.Status = LeadStatusNew
	lead.Deleted = true
	assert.Error(t, lead.CanConvert())
	assert.NotEqual(t, ErrLeadAlreadyConverted, lead.CanConvert())
}

func TestOrganizationNameFallsBackToPerson(t *testing.T) {
	lead, _ := NewLead("Maria", "Silva")
	assert.Equal(t, "Maria Silva Company", lead.OrganizationName())

	lead.AccountName = "Acme Corp"
	assert.Equal(t, "Acme Corp", lead.OrganizationName())
}

func TestHasQualifyingAmount(t *testing.T) {
	lead, _ := NewLead("Maria", "Silva")
	assert.False(t, lead.HasQualifyingAmount())

	zero := 0.0
	lead.OpportunityAmount = &zero
	assert.False(t, lead.HasQualifyingAmount())

	amount := 100.0
	lead.OpportunityAmount = &amount
	assert.True(t, lead.HasQualifyingAmount())
}

func TestNewOpportunityDefaults(t *testing.T) {
	opp, err := NewOpportunity("Acme - Opportunity", "org-1", 5000)

	assert.NoError(t, err)
	assert.Equal(t, StageProspecting, opp.Stage)
	assert.Equal(t, 10, opp.Probability)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), opp.CloseDate, time.Minute)
	assert.True(t, opp.IsOpen())
}

func TestNewOpportunityRejectsNegativeAmount(t *testing.T) {
	_, err := NewOpportunity("X", "org-1", -1)
	assert.Error(t, err)
}
