package usecase

import (
	"context"

	"github.com/nextgencrm/nextgencrm-go/internal/infra/queue"
)

type QueueProducerInterface interface {
	PublishConversion(ctx context.Context, payload queue.ConversionEvent) error
}

type ConvertLeadOutput struct {
	Message        string  `json:"message"`
	OrganizationID string  `json:"organization_id"`
	ContactID      string  `json:"contact_id"`
	OpportunityID  *string `json:"opportunity_id"`
}
