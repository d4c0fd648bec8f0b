package client

// ConversionResult is the server's answer to a successful lead
// conversion. OpportunityID is nil when the lead had no qualifying
// amount and no opportunity was created.
type ConversionResult struct {
	Message        string  `json:"message"`
	OrganizationID string  `json:"organization_id"`
	ContactID      string  `json:"contact_id"`
	OpportunityID  *string `json:"opportunity_id,omitempty"`
}

// Lead mirrors the server's lead resource. Converted leads are
// immutable on the server; the client guard checks the flag before
// issuing a conversion request.
type Lead struct {
	ID                string  `json:"id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	AccountName       string  `json:"account_name"`
	Title             string  `json:"title"`
	Status            string  `json:"status"`
	OpportunityAmount float64 `json:"opportunity_amount"`
	Converted         bool    `json:"converted"`
	AssignedTo        string  `json:"assigned_to"`
}

type errorBody struct {
	Error string `json:"error"`
}
