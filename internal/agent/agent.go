package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ragdesk/ragdesk/internal/knowledge"
	"github.com/ragdesk/ragdesk/internal/llm"
	"github.com/ragdesk/ragdesk/internal/retrieval"
	"github.com/ragdesk/ragdesk/internal/ticketing"
	"github.com/ragdesk/ragdesk/internal/tools"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// retrievalLimit is how many chunks ground an answer.
const retrievalLimit = 5

// defaultTicketPriority is the helpdesk priority for assistant-created tickets.
const defaultTicketPriority = 2

// Agent routes each customer message to the handler for its intent.
type Agent struct {
	client     *llm.Client
	classifier *Classifier
	retrieval  *retrieval.Service
	registry   *tools.Registry
	tickets    ticketing.Adapter
	db         *knowledge.DB
	logger     *slog.Logger
}

// New creates an Agent. db may be nil, in which case conversations are not
// persisted.
func New(client *llm.Client, retrievalSvc *retrieval.Service, registry *tools.Registry,
	tickets ticketing.Adapter, db *knowledge.DB, logger *slog.Logger) *Agent {
	return &Agent{
		client:     client,
		classifier: NewClassifier(client, logger),
		retrieval:  retrievalSvc,
		registry:   registry,
		tickets:    tickets,
		db:         db,
		logger:     logger,
	}
}

// Process handles one customer message end to end: classify, dispatch to
// exactly one handler, persist the exchange. Handler failures degrade to an
// apology; an error return means the request itself was invalid.
func (a *Agent) Process(ctx context.Context, req Request) (*Response, error) {
	if req.KnowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is required")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	cls := a.classifier.Classify(ctx, req.Query, req.Messages)
	a.logger.Info("message classified",
		"intent", cls.Intent, "reason", cls.Reason, "knowledge_base_id", req.KnowledgeBaseID)

	var reply string
	switch cls.Intent {
	case IntentAgentRequest:
		reply = handoffMessage
	case IntentSmallTalk:
		reply = a.handleSmallTalk(ctx, req)
	case IntentTransaction:
		reply = a.handleTransaction(ctx, req)
	case IntentTicketCreation:
		reply = a.handleTicket(ctx, req)
	default:
		reply = a.handleKnowledge(ctx, req)
	}

	a.persist(ctx, &req, cls.Intent, reply)

	return &Response{
		Message:        reply,
		Intent:         cls.Intent,
		ConversationID: req.ConversationID,
	}, nil
}

// handleKnowledge answers from the knowledge base. Retrieval is mandatory;
// when nothing relevant is found the model is told to admit it.
func (a *Agent) handleKnowledge(ctx context.Context, req Request) string {
	k, err := a.retrieval.Retrieve(ctx, req.Query, req.KnowledgeBaseID, vectordb.SearchOptions{Limit: retrievalLimit})
	if err != nil {
		a.logger.Error("retrieval failed", "error", err)
		return apologyMessage
	}

	system := knowledgeMissPrompt
	if k.HasRelevantInformation {
		system = fmt.Sprintf(knowledgePrompt, k.RelevantContext)
	}

	reply, err := a.client.GenerateText(ctx, llm.CompletionRequest{
		Messages: a.conversation(system, req),
	})
	if err != nil {
		a.logger.Error("knowledge answer failed", "error", err)
		return apologyMessage
	}
	return reply
}

// handleSmallTalk keeps the conversation going and exposes the lead and
// seminar tools. Retrieval context is best effort here.
func (a *Agent) handleSmallTalk(ctx context.Context, req Request) string {
	var contextBlock string
	if k, err := a.retrieval.Retrieve(ctx, req.Query, req.KnowledgeBaseID, vectordb.SearchOptions{Limit: retrievalLimit}); err == nil && k.HasRelevantInformation {
		contextBlock = "\n\nBackground that may be useful:\n" + k.RelevantContext
	}

	reply, err := a.client.GenerateWithTools(ctx, llm.CompletionRequest{
		Messages: a.conversation(fmt.Sprintf(smallTalkPrompt, contextBlock), req),
		Tools:    a.registry.Definitions(),
	}, a.registry)
	if err != nil {
		a.logger.Error("small talk failed", "error", err)
		return apologyMessage
	}
	return reply
}

type transactionResult struct {
	Kind string `json:"kind"`
}

// handleTransaction sub-classifies the transaction and answers with the
// matching canned flow. Transactions are not executed by the assistant.
func (a *Agent) handleTransaction(ctx context.Context, req Request) string {
	result, err := llm.GenerateObject[transactionResult](ctx, a.client, llm.CompletionRequest{
		Messages:    a.conversation(transactionClassifyPrompt, req),
		Temperature: 0,
	})
	if err != nil {
		a.logger.Warn("transaction classification failed", "error", err)
		result.Kind = "Other"
	}

	switch result.Kind {
	case "Registration":
		return "I can help with that registration. Please share your email address and the offering you want to register for, and I'll pass it to our team."
	case "Cancellation":
		return "I understand you want to cancel. Please share your booking reference and I'll forward the cancellation to our team right away."
	case "Modification":
		return "Happy to help with that change. Please share your booking reference and what you would like to change, and I'll pass it on."
	default:
		return "I can pass your request to our team. Could you tell me a bit more about what you would like to do?"
	}
}

type ticketFields struct {
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// handleTicket gathers the fields for a support ticket. While anything is
// missing the reply is a clarifying question; once complete the ticket goes
// to the helpdesk and the outcome is reported.
func (a *Agent) handleTicket(ctx context.Context, req Request) string {
	fields, err := llm.GenerateObject[ticketFields](ctx, a.client, llm.CompletionRequest{
		Messages:    a.conversation(ticketExtractPrompt, req),
		Temperature: 0,
	})
	if err != nil {
		a.logger.Error("ticket field extraction failed", "error", err)
		return apologyMessage
	}

	var missing []string
	if !strings.Contains(fields.Email, "@") {
		missing = append(missing, "your email address")
	}
	if strings.TrimSpace(fields.Subject) == "" {
		missing = append(missing, "a short title for the issue")
	}
	if strings.TrimSpace(fields.Description) == "" {
		missing = append(missing, "a description of what went wrong")
	}
	if len(missing) > 0 {
		return fmt.Sprintf("I'd like to open a support ticket for you. Could you give me %s?",
			strings.Join(missing, " and "))
	}

	ticket, err := a.tickets.CreateTicket(ctx, ticketing.TicketRequest{
		Email:       fields.Email,
		Subject:     fields.Subject,
		Description: fields.Description,
		Priority:    defaultTicketPriority,
	})
	if err != nil {
		a.logger.Error("ticket creation failed", "error", err)
		return apologyMessage
	}

	a.logger.Info("ticket created", "ticket_id", ticket.ID, "status", ticket.Status)
	return fmt.Sprintf("I've opened support ticket #%d (%s) for you. Our team will follow up at %s.",
		ticket.ID, ticket.Status, fields.Email)
}

// conversation builds the model message list: system prompt, trailing
// history, then the current query.
func (a *Agent) conversation(system string, req Request) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	for _, turn := range trimHistory(req.Messages) {
		messages = append(messages, llm.Message{Role: llm.Role(turn.Role), Content: turn.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: req.Query})
}

// persist appends the exchange to the conversation transcript, creating the
// conversation on first use. Persistence failures are logged, never surfaced.
func (a *Agent) persist(ctx context.Context, req *Request, intent Intent, reply string) {
	if a.db == nil {
		return
	}

	if req.ConversationID == "" {
		conv, err := a.db.CreateConversation(ctx, req.KnowledgeBaseID)
		if err != nil {
			a.logger.Error("creating conversation", "error", err)
			return
		}
		req.ConversationID = conv.ID
	}

	if _, err := a.db.AppendMessage(ctx, req.ConversationID, "user", req.Query, string(intent)); err != nil {
		a.logger.Error("persisting user turn", "error", err)
		return
	}
	if _, err := a.db.AppendMessage(ctx, req.ConversationID, "assistant", reply, string(intent)); err != nil {
		a.logger.Error("persisting assistant turn", "error", err)
	}
}
