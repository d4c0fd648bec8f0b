package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConversionEvent is the audit record published after a lead conversion
// commits. Consumers must tolerate a nil OpportunityID: a lead without a
// qualifying amount converts without one.
type ConversionEvent struct {
	LeadID           string    `json:"lead_id"`
	LeadName         string    `json:"lead_name"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	ContactID        string    `json:"contact_id"`
	OpportunityID    *string   `json:"opportunity_id"`
	AssignedEmail    string    `json:"assigned_email,omitempty"`
	ConvertedAt      time.Time `json:"converted_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishConversion(ctx context.Context, payload ConversionEvent) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal conversion event: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // audit trail survives broker restarts
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %v", err)
	}

	return nil
}
