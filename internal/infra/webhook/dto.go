package webhook

import "time"

// ConversionPayload is the JSON body posted to the configured webhook
// whenever a lead conversion lands.
type ConversionPayload struct {
	Event            string    `json:"event"`
	LeadID           string    `json:"lead_id"`
	LeadName         string    `json:"lead_name"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	ContactID        string    `json:"contact_id"`
	OpportunityID    *string   `json:"opportunity_id,omitempty"`
	ConvertedAt      time.Time `json:"converted_at"`
}

type deliveryResponse struct {
	Error *errorResponse `json:"error"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
