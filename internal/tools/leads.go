package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ragdesk/ragdesk/internal/crm"
	"github.com/ragdesk/ragdesk/internal/llm"
)

// CreateLeadTool registers a new sales lead in the CRM.
type CreateLeadTool struct {
	client crm.LeadClient
}

// NewCreateLeadTool creates the tool.
func NewCreateLeadTool(client crm.LeadClient) *CreateLeadTool {
	return &CreateLeadTool{client: client}
}

func (t *CreateLeadTool) Name() string { return "create_lead" }

func (t *CreateLeadTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        t.Name(),
		Description: "Create a sales lead in the CRM for a customer who wants to be contacted. Ask for the customer's email and name before calling this.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"email": {"type": "string", "description": "Customer email address"},
				"first_name": {"type": "string", "description": "Customer first name"},
				"last_name": {"type": "string", "description": "Customer last name"},
				"company": {"type": "string", "description": "Customer company, if mentioned"},
				"phone": {"type": "string", "description": "Customer phone number, if mentioned"}
			},
			"required": ["email", "last_name"]
		}`),
	}
}

type leadArgs struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

func (t *CreateLeadTool) Execute(ctx context.Context, args json.RawMessage) Outcome {
	var parsed leadArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return Outcome{Kind: OutcomeInvalid, Message: fmt.Sprintf("malformed arguments: %v", err)}
	}

	return createLead(ctx, t.client, crm.Lead{
		Email:     parsed.Email,
		FirstName: parsed.FirstName,
		LastName:  parsed.LastName,
		Company:   parsed.Company,
		Phone:     parsed.Phone,
		Source:    "support chat",
	}, "The lead has been created and the sales team will reach out.")
}

// SeminarInviteTool signs a customer up for the next product seminar. The
// signup is recorded as a CRM lead tagged with the seminar source.
type SeminarInviteTool struct {
	client crm.LeadClient
}

// NewSeminarInviteTool creates the tool.
func NewSeminarInviteTool(client crm.LeadClient) *SeminarInviteTool {
	return &SeminarInviteTool{client: client}
}

func (t *SeminarInviteTool) Name() string { return "send_seminar_invite" }

func (t *SeminarInviteTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        t.Name(),
		Description: "Send the customer an invitation to the next product seminar. Ask for the customer's email and name before calling this.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"email": {"type": "string", "description": "Customer email address"},
				"first_name": {"type": "string", "description": "Customer first name"},
				"last_name": {"type": "string", "description": "Customer last name"}
			},
			"required": ["email", "last_name"]
		}`),
	}
}

func (t *SeminarInviteTool) Execute(ctx context.Context, args json.RawMessage) Outcome {
	var parsed leadArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return Outcome{Kind: OutcomeInvalid, Message: fmt.Sprintf("malformed arguments: %v", err)}
	}

	return createLead(ctx, t.client, crm.Lead{
		Email:     parsed.Email,
		FirstName: parsed.FirstName,
		LastName:  parsed.LastName,
		Source:    "seminar invite",
	}, "The invitation has been sent.")
}

func createLead(ctx context.Context, client crm.LeadClient, lead crm.Lead, successMsg string) Outcome {
	result, err := client.CreateLead(ctx, lead)
	if errors.Is(err, crm.ErrInvalidLead) {
		return Outcome{Kind: OutcomeInvalid, Message: err.Error()}
	}
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Message: fmt.Sprintf("crm request failed: %v", err)}
	}

	switch result.Status {
	case crm.StatusDuplicate:
		return Outcome{
			Kind:      OutcomeDuplicate,
			Message:   "A record for this customer already exists; no new record was created.",
			Reference: result.LeadID,
		}
	default:
		return Outcome{
			Kind:      OutcomeCreated,
			Message:   successMsg,
			Reference: result.LeadID,
		}
	}
}
