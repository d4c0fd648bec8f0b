package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin HTTP client for the CRM API. It knows endpoints and
// error decoding; cache effects live in the Converter and Synchronizer.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Error
		if msg == "" {
			msg = string(raw)
		}
		if isAlreadyConvertedMessage(msg) {
			return ErrAlreadyConverted
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) GetLead(ctx context.Context, id string) (*Lead, error) {
	var lead Lead
	if err := c.do(ctx, http.MethodGet, "/api/v1/leads/"+id, nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// ConvertLead issues the single conversion request. The server is the
// idempotency authority; a duplicate attempt comes back as
// ErrAlreadyConverted.
func (c *Client) ConvertLead(ctx context.Context, id string) (*ConversionResult, error) {
	var result ConversionResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/leads/"+id+"/convert", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/leads/"+id, nil, nil)
}

func (c *Client) UpdateLead(ctx context.Context, id string, fields map[string]any) (*Lead, error) {
	var lead Lead
	if err := c.do(ctx, http.MethodPut, "/api/v1/leads/"+id, fields, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}
