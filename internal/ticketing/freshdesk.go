package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// newTicketStatus is the platform code for a freshly opened ticket.
const newTicketStatus = 2

// FreshdeskAdapter talks to the Freshdesk REST API.
type FreshdeskAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewFreshdeskAdapter creates an adapter for the given helpdesk domain.
func NewFreshdeskAdapter(domain, apiKey string) *FreshdeskAdapter {
	return &FreshdeskAdapter{
		baseURL:    fmt.Sprintf("https://%s.freshdesk.com/api/v2", domain),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type freshdeskTicket struct {
	ID       int64  `json:"id"`
	Subject  string `json:"subject"`
	Status   int    `json:"status"`
	Priority int    `json:"priority"`
}

func (t freshdeskTicket) toTicket() *Ticket {
	return &Ticket{
		ID:       t.ID,
		Subject:  t.Subject,
		Status:   StatusName(t.Status),
		Priority: t.Priority,
	}
}

func (a *FreshdeskAdapter) Name() string { return "freshdesk" }

func (a *FreshdeskAdapter) CreateTicket(ctx context.Context, req TicketRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"email":       req.Email,
		"subject":     req.Subject,
		"description": req.Description,
		"priority":    req.Priority,
		"status":      newTicketStatus,
		"tags":        []string{"ai-assistant-created"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling ticket: %w", err)
	}

	var out freshdeskTicket
	if err := a.do(ctx, http.MethodPost, "/tickets", bytes.NewReader(body), &out); err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	return out.toTicket(), nil
}

func (a *FreshdeskAdapter) GetTicket(ctx context.Context, id int64) (*Ticket, error) {
	var out freshdeskTicket
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/tickets/%d", id), nil, &out); err != nil {
		return nil, fmt.Errorf("fetching ticket %d: %w", id, err)
	}
	return out.toTicket(), nil
}

func (a *FreshdeskAdapter) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	// Freshdesk uses the API key as the basic-auth username.
	httpReq.SetBasicAuth(a.apiKey, "X")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
