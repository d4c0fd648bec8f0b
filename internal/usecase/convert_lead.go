package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nextgencrm/nextgencrm-go/internal/entity"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/http/middleware"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/queue"
)

// ConvertLeadUseCase turns a lead into an organization, a contact and,
// when the lead carries a qualifying amount, an opportunity. The three
// creations plus the converted flag flip run inside one compensating
// transaction: either everything exists afterwards or nothing does.
type ConvertLeadUseCase struct {
	Leads         entity.LeadRepositoryInterface
	Organizations entity.OrganizationRepositoryInterface
	Contacts      entity.ContactRepositoryInterface
	Opportunities entity.OpportunityRepositoryInterface
	Queue         QueueProducerInterface
}

func NewConvertLeadUseCase(
	leads entity.LeadRepositoryInterface,
	organizations entity.OrganizationRepositoryInterface,
	contacts entity.ContactRepositoryInterface,
	opportunities entity.OpportunityRepositoryInterface,
	queueProducer QueueProducerInterface,
) *ConvertLeadUseCase {
	return &ConvertLeadUseCase{
		Leads:         leads,
		Organizations: organizations,
		Contacts:      contacts,
		Opportunities: opportunities,
		Queue:         queueProducer,
	}
}

func (uc *ConvertLeadUseCase) Execute(ctx context.Context, leadID string) (*ConvertLeadOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, &DomainError{
			Code:    "LEAD_NOT_FOUND",
			Message: "lead not found: " + err.Error(),
		}
	}

	if err := lead.CanConvert(); err != nil {
		if err == entity.ErrLeadAlreadyConverted {
			middleware.RecordConversion("already_converted")
			return nil, &DomainError{
				Code:    "ALREADY_CONVERTED",
				Message: "Lead has already been converted and records still exist",
			}
		}
		return nil, &DomainError{
			Code:    "LEAD_NOT_CONVERTIBLE",
			Message: err.Error(),
		}
	}

	org, err := entity.NewOrganization(lead.OrganizationName())
	if err != nil {
		return nil, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
	}
	org.Website = lead.Website
	org.Industry = lead.Industry
	org.EmailAddress = lead.EmailAddress
	org.PhoneNumber = lead.PhoneNumber
	org.AssignedUserID = lead.AssignedUserID

	contact, err := entity.NewContact(lead.FirstName, lead.LastName, org.ID)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
	}
	contact.Salutation = lead.Salutation
	contact.Title = lead.Title
	contact.EmailAddress = lead.EmailAddress
	contact.PhoneNumber = lead.PhoneNumber
	contact.Description = lead.Description
	contact.AssignedUserID = lead.AssignedUserID

	var opp *entity.Opportunity
	if lead.HasQualifyingAmount() {
		opp, err = entity.NewOpportunity(
			fmt.Sprintf("%s - Opportunity", org.Name),
			org.ID,
			*lead.OpportunityAmount,
		)
		if err != nil {
			return nil, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
		}
		opp.ContactID = contact.ID
		opp.LeadSource = lead.Source
		opp.Description = lead.Description
		opp.AssignedUserID = lead.AssignedUserID
	}

	convertedAt := time.Now()

	txn := NewTransaction()

	txn.AddOperation("create_organization", func(ctx context.Context) error {
		return uc.Organizations.Create(ctx, org)
	})
	txn.AddCompensation("delete_organization", func(ctx context.Context) error {
		return uc.Organizations.SoftDelete(ctx, org.ID)
	})

	txn.AddOperation("create_contact", func(ctx context.Context) error {
		return uc.Contacts.Create(ctx, contact)
	})
	txn.AddCompensation("delete_contact", func(ctx context.Context) error {
		return uc.Contacts.SoftDelete(ctx, contact.ID)
	})

	if opp != nil {
		txn.AddOperation("create_opportunity", func(ctx context.Context) error {
			return uc.Opportunities.Create(ctx, opp)
		})
		txn.AddCompensation("delete_opportunity", func(ctx context.Context) error {
			return uc.Opportunities.SoftDelete(ctx, opp.ID)
		})
	}

	txn.AddOperation("mark_lead_converted", func(ctx context.Context) error {
		return uc.Leads.MarkConverted(ctx, lead.ID, convertedAt)
	})

	if err := txn.Execute(ctx); err != nil {
		middleware.RecordConversion("failed")
		return nil, &TechnicalError{
			Code:    "CONVERSION_FAILED",
			Message: "Failed to convert lead: " + err.Error(),
		}
	}

	middleware.RecordConversion("converted")

	var oppID *string
	if opp != nil {
		oppID = &opp.ID
	}

	event := queue.ConversionEvent{
		LeadID:           lead.ID,
		LeadName:         lead.FullName(),
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		ContactID:        contact.ID,
		OpportunityID:    oppID,
		AssignedEmail:    lead.AssignedEmail,
		ConvertedAt:      convertedAt,
	}
	if uc.Queue != nil {
		if err := uc.Queue.PublishConversion(ctx, event); err != nil {
			// Conversion already committed; losing the audit event must not
			// fail the request.
			log.Printf("⚠️ CRITICAL: lead %s converted but audit event not published: %v", lead.ID, err)
		}
	}

	log.Printf("✅ Lead %s converted: org=%s contact=%s opportunity=%v", lead.ID, org.ID, contact.ID, oppID != nil)

	return &ConvertLeadOutput{
		Message:        "Lead converted successfully",
		OrganizationID: org.ID,
		ContactID:      contact.ID,
		OpportunityID:  oppID,
	}, nil
}
