package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.Lead, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) MarkConverted(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockOrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*entity.Organization, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) FindByID(ctx context.Context, id string) (*entity.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Contact, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOpportunityRepository
type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) Create(ctx context.Context, opp *entity.Opportunity) error {
	args := m.Called(ctx, opp)
	return args.Error(0)
}

func (m *MockOpportunityRepository) FindByID(ctx context.Context, id string) (*entity.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) List(ctx context.Context, organizationID string, limit, offset int) ([]*entity.Opportunity, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) Update(ctx context.Context, opp *entity.Opportunity) error {
	args := m.Called(ctx, opp)
	return args.Error(0)
}

func (m *MockOpportunityRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishConversion(ctx context.Context, payload queue.ConversionEvent) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func qualifiedLead() *entity.Lead {
	amount := 50000.0
	return &entity.Lead{
		ID:                "lead-1",
		FirstName:         "Maria",
		LastName:          "Silva",
		AccountName:       "Acme Corp",
		EmailAddress:      "maria@acme.com",
		Status:            entity.LeadStatusInProcess,
		OpportunityAmount: &amount,
		AssignedEmail:     "rep@nextgencrm.io",
	}
}

func TestConvertLeadSuccessWithOpportunity(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)
	producer := new(MockQueueProducer)

	lead := qualifiedLead()
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	opps.On("Create", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkConverted", mock.Anything, "lead-1", mock.Anything).Return(nil)
	producer.On("PublishConversion", mock.Anything, mock.Anything).Return(nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, producer)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.NotEmpty(t, out.OrganizationID)
	assert.NotEmpty(t, out.ContactID)
	assert.NotNil(t, out.OpportunityID)

	createdOpp := opps.Calls[0].Arguments.Get(1).(*entity.Opportunity)
	assert.Equal(t, "Acme Corp - Opportunity", createdOpp.Name)
	assert.Equal(t, entity.StageProspecting, createdOpp.Stage)
	assert.Equal(t, 10, createdOpp.Probability)

	leads.AssertCalled(t, "MarkConverted", mock.Anything, "lead-1", mock.Anything)
	producer.AssertCalled(t, "PublishConversion", mock.Anything, mock.Anything)
}

func TestConvertLeadWithoutAmountSkipsOpportunity(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)
	producer := new(MockQueueProducer)

	lead := qualifiedLead()
	lead.OpportunityAmount = nil
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkConverted", mock.Anything, "lead-1", mock.Anything).Return(nil)
	producer.On("PublishConversion", mock.Anything, mock.Anything).Return(nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, producer)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.NoError(t, err)
	assert.Nil(t, out.OpportunityID)
	opps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConvertLeadZeroAmountSkipsOpportunity(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)
	producer := new(MockQueueProducer)

	lead := qualifiedLead()
	zero := 0.0
	lead.OpportunityAmount = &zero
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkConverted", mock.Anything, "lead-1", mock.Anything).Return(nil)
	producer.On("PublishConversion", mock.Anything, mock.Anything).Return(nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, producer)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.NoError(t, err)
	assert.Nil(t, out.OpportunityID)
	opps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConvertLeadAlreadyConvertedFails(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)

	lead := qualifiedLead()
	lead.Converted = true
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, nil)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.True(t, IsAlreadyConverted(err))
	assert.Contains(t, err.Error(), "already been converted")
	orgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConvertLeadNotFoundFails(t *testing.T) {
	leads := new(MockLeadRepository)
	leads.On("FindByID", mock.Anything, "missing").Return(nil, errors.New("not found"))

	uc := NewConvertLeadUseCase(leads, new(MockOrganizationRepository), new(MockContactRepository), new(MockOpportunityRepository), nil)
	out, err := uc.Execute(context.Background(), "missing")

	assert.Nil(t, out)
	assert.True(t, IsDomainError(err))
}

// Failure in the middle of the transaction must compensate everything
// already created, in reverse order, and leave the lead unconverted.
func TestConvertLeadOpportunityFailureRollsBack(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)

	lead := qualifiedLead()
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	opps.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	contacts.On("SoftDelete", mock.Anything, mock.Anything).Return(nil)
	orgs.On("SoftDelete", mock.Anything, mock.Anything).Return(nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, nil)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.Nil(t, out)
	assert.True(t, IsTechnicalError(err))
	contacts.AssertCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	orgs.AssertCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	leads.AssertNotCalled(t, "MarkConverted", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvertLeadMarkConvertedFailureRollsBack(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)

	lead := qualifiedLead()
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	opps.On("Create", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkConverted", mock.Anything, "lead-1", mock.Anything).Return(entity.ErrLeadAlreadyConverted)
	opps.On("SoftDelete", mock.Anything, mock.Anything).Return(nil)
	contacts.On("SoftDelete", mock.Anything, mock.Anything).Return(nil)
	orgs.On("SoftDelete", mock.Anything, mock.Anything).Return(nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, nil)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.Nil(t, out)
	assert.Error(t, err)
	opps.AssertCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	contacts.AssertCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	orgs.AssertCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestConvertLeadQueueFailureDoesNotFailConversion(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)
	producer := new(MockQueueProducer)

	lead := qualifiedLead()
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	opps.On("Create", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkConverted", mock.Anything, "lead-1", mock.Anything).Return(nil)
	producer.On("PublishConversion", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, producer)
	out, err := uc.Execute(context.Background(), "lead-1")

	assert.NoError(t, err)
	assert.NotNil(t, out)
}

func TestConvertLeadDerivesOrganizationNameFromPerson(t *testing.T) {
	leads := new(MockLeadRepository)
	orgs := new(MockOrganizationRepository)
	contacts := new(MockContactRepository)
	opps := new(MockOpportunityRepository)

	lead := qualifiedLead()
	lead.AccountName = ""
	lead.OpportunityAmount = nil
	leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)
	orgs.On("Create", mock.Anything, mock.Anything).Return(nil)
	contacts.On("Create", mock.Anything, mock.Anything).Return(nil)
	leads.On("MarkConverted", mock.Anything, "lead-1", mock.Anything).Return(nil)

	uc := NewConvertLeadUseCase(leads, orgs, contacts, opps, nil)
	_, err := uc.Execute(context.Background(), "lead-1")

	assert.NoError(t, err)
	createdOrg := orgs.Calls[0].Arguments.Get(1).(*entity.Organization)
	assert.Equal(t, "Maria Silva Company", createdOrg.Name)
}
