package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/nextgencrm/nextgencrm-go/internal/infra/http/middleware"
	"github.com/nextgencrm/nextgencrm-go/internal/infra/queue"
)

// Client delivers conversion events to an external webhook (Slack,
// Zapier, a downstream automation). Unconfigured means disabled.
type Client struct {
	url    string
	secret string
	http   *http.Client
}

func NewClient() *Client {
	return &Client{
		url:    os.Getenv("CONVERSION_WEBHOOK_URL"),
		secret: os.Getenv("CONVERSION_WEBHOOK_SECRET"),
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c.url != ""
}

func (c *Client) ForwardConversion(event queue.ConversionEvent) error {
	if !c.Enabled() {
		return nil
	}

	payload := ConversionPayload{
		Event:            "lead.converted",
		LeadID:           event.LeadID,
		LeadName:         event.LeadName,
		OrganizationID:   event.OrganizationID,
		OrganizationName: event.OrganizationName,
		ContactID:        event.ContactID,
		OpportunityID:    event.OpportunityID,
		ConvertedAt:      event.ConvertedAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("❌ Webhook: delivery failed: %v", err)
		middleware.RecordIntegrationError("webhook")
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ Webhook: endpoint returned status %d: %s", resp.StatusCode, string(respBody))
		middleware.RecordIntegrationError("webhook")
		return fmt.Errorf("webhook error: %d", resp.StatusCode)
	}

	var result deliveryResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err == nil && result.Error != nil {
			log.Printf("❌ Webhook: endpoint error: %s (code %d)", result.Error.Message, result.Error.Code)
			return fmt.Errorf("webhook: %s", result.Error.Message)
		}
	}

	log.Printf("✅ Webhook: conversion of lead %s delivered", event.LeadID)
	return nil
}
