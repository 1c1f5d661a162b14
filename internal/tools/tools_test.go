package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ragdesk/ragdesk/internal/crm"
	"github.com/ragdesk/ragdesk/internal/llm"
	"github.com/ragdesk/ragdesk/internal/log"
)

// failingClient simulates a CRM outage.
type failingClient struct{}

func (failingClient) CreateLead(ctx context.Context, lead crm.Lead) (*crm.LeadResult, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("connection refused")
}

func (failingClient) Name() string { return "failing" }

func execute(t *testing.T, tool Tool, args string) Outcome {
	t.Helper()
	return tool.Execute(context.Background(), json.RawMessage(args))
}

func TestCreateLeadOutcomes(t *testing.T) {
	client := crm.NewMemoryClient()
	tool := NewCreateLeadTool(client)

	args := `{"email":"sam@example.com","last_name":"Okafor"}`

	if out := execute(t, tool, args); out.Kind != OutcomeCreated {
		t.Errorf("first call outcome = %q, want created", out.Kind)
	}
	if out := execute(t, tool, args); out.Kind != OutcomeDuplicate {
		t.Errorf("second call outcome = %q, want duplicate", out.Kind)
	}
	if out := execute(t, tool, `{"email":"nope","last_name":"Okafor"}`); out.Kind != OutcomeInvalid {
		t.Errorf("bad email outcome = %q, want invalid", out.Kind)
	}
	if out := execute(t, tool, `{bad json`); out.Kind != OutcomeInvalid {
		t.Errorf("malformed args outcome = %q, want invalid", out.Kind)
	}
}

func TestCreateLeadFailureOutcome(t *testing.T) {
	tool := NewCreateLeadTool(failingClient{})

	out := execute(t, tool, `{"email":"sam@example.com","last_name":"Okafor"}`)
	if out.Kind != OutcomeFailed {
		t.Errorf("outcome = %q, want failed", out.Kind)
	}
}

func TestSeminarInviteTagsSource(t *testing.T) {
	client := crm.NewMemoryClient()
	tool := NewSeminarInviteTool(client)

	out := execute(t, tool, `{"email":"pat@example.com","last_name":"Lee"}`)
	if out.Kind != OutcomeCreated {
		t.Fatalf("outcome = %q, want created", out.Kind)
	}
	if out.Reference == "" {
		t.Error("created outcome missing reference")
	}

	// A second invite for the same customer is deduplicated.
	if out := execute(t, tool, `{"email":"pat@example.com","last_name":"Lee"}`); out.Kind != OutcomeDuplicate {
		t.Errorf("repeat outcome = %q, want duplicate", out.Kind)
	}
}

func TestRegistryExecute(t *testing.T) {
	client := crm.NewMemoryClient()
	registry := NewRegistry(log.NewNop(), NewCreateLeadTool(client), NewSeminarInviteTool(client))

	if defs := registry.Definitions(); len(defs) != 2 {
		t.Errorf("got %d definitions, want 2", len(defs))
	}

	result, err := registry.Execute(context.Background(), llm.ToolCall{
		ID:        "call_1",
		Name:      "create_lead",
		Arguments: `{"email":"sam@example.com","last_name":"Okafor"}`,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out Outcome
	if err := json.Unmarshal([]byte(result), &out); err != nil {
		t.Fatalf("result is not an outcome: %v", err)
	}
	if out.Kind != OutcomeCreated {
		t.Errorf("outcome = %q, want created", out.Kind)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	registry := NewRegistry(log.NewNop())

	result, err := registry.Execute(context.Background(), llm.ToolCall{
		ID:        "call_1",
		Name:      "delete_everything",
		Arguments: `{}`,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var out Outcome
	if err := json.Unmarshal([]byte(result), &out); err != nil {
		t.Fatalf("result is not an outcome: %v", err)
	}
	if out.Kind != OutcomeFailed {
		t.Errorf("outcome = %q, want failed", out.Kind)
	}
}
