package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConversionNotifier is what the worker calls for each consumed
// conversion event. The mail sender implements it.
type ConversionNotifier interface {
	SendConversionNotice(to, leadName, organizationName string) error
}

// ConversionForwarder pushes the event to an external webhook. Delivery
// is best-effort: a failure is logged, never requeued.
type ConversionForwarder interface {
	ForwardConversion(event ConversionEvent) error
}

type Worker struct {
	Channel   *amqp.Channel
	Notifier  ConversionNotifier
	Forwarder ConversionForwarder
}

func NewWorker(ch *amqp.Channel, notifier ConversionNotifier, forwarder ConversionForwarder) *Worker {
	return &Worker{
		Channel:   ch,
		Notifier:  notifier,
		Forwarder: forwarder,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual is safer)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ Failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var event ConversionEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Printf("❌ [WORKER] malformed conversion event: %s", err)
				// Poison message. Reject without requeue so the queue keeps moving.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] conversion event for lead %s (%s)", event.LeadID, event.LeadName)

			if err := w.processEvent(event); err != nil {
				log.Printf("❌ [WORKER] notification failed: %s", err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker running, waiting on queue '%s'", queueName)
	<-forever
}

func (w *Worker) processEvent(event ConversionEvent) error {
	if w.Forwarder != nil {
		if err := w.Forwarder.ForwardConversion(event); err != nil {
			log.Printf("⚠️ [WORKER] webhook delivery failed for lead %s: %s", event.LeadID, err)
		}
	}

	if event.AssignedEmail == "" {
		// Nobody to notify. Ack and move on.
		log.Printf("⚠️ [WORKER] lead %s has no assigned user email, skipping notice", event.LeadID)
		return nil
	}

	return w.Notifier.SendConversionNotice(event.AssignedEmail, event.LeadName, event.OrganizationName)
}
