package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ragdesk/ragdesk/internal/crm"
	"github.com/ragdesk/ragdesk/internal/knowledge"
	"github.com/ragdesk/ragdesk/internal/llm"
	"github.com/ragdesk/ragdesk/internal/log"
	"github.com/ragdesk/ragdesk/internal/retrieval"
	"github.com/ragdesk/ragdesk/internal/ticketing"
	"github.com/ragdesk/ragdesk/internal/tools"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// scriptedProvider returns canned responses in call order and records every
// request it sees.
type scriptedProvider struct {
	mu        sync.Mutex
	Responses []*llm.CompletionResponse
	Errs      []error
	Requests  []llm.CompletionRequest
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := len(p.Requests)
	p.Requests = append(p.Requests, req)
	if i < len(p.Errs) && p.Errs[i] != nil {
		return nil, p.Errs[i]
	}
	if i < len(p.Responses) {
		return p.Responses[i], nil
	}
	return &llm.CompletionResponse{Content: "ok"}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

func text(s string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: s}
}

func classified(intent string) *llm.CompletionResponse {
	return text(fmt.Sprintf(`{"intent":%q,"reason":"test"}`, intent))
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int { return 3 }
func (stubEmbedder) Name() string    { return "stub" }

type stubStore struct {
	results []vectordb.SearchResult
}

func (s *stubStore) Add(ctx context.Context, records []vectordb.Record) error { return nil }

func (s *stubStore) SearchVector(ctx context.Context, vector []float32, kbID string, opts vectordb.SearchOptions) ([]vectordb.SearchResult, error) {
	return s.results, nil
}

func (s *stubStore) DeleteByDocument(ctx context.Context, kbID, docID string) error { return nil }
func (s *stubStore) Count() int                                                     { return len(s.results) }
func (s *stubStore) Persist(ctx context.Context, dir string) error                  { return nil }
func (s *stubStore) Load(ctx context.Context, dir string) error                     { return nil }

type agentDeps struct {
	provider *scriptedProvider
	store    *stubStore
	tickets  *ticketing.MemoryAdapter
	db       *knowledge.DB
}

func newTestAgent(t *testing.T, deps agentDeps) *Agent {
	t.Helper()
	if deps.provider == nil {
		deps.provider = &scriptedProvider{}
	}
	if deps.store == nil {
		deps.store = &stubStore{}
	}
	if deps.tickets == nil {
		deps.tickets = ticketing.NewMemoryAdapter()
	}

	logger := log.NewNop()
	client := llm.NewClient(deps.provider, deps.provider, 0, logger)
	retrievalSvc := retrieval.NewService(stubEmbedder{}, deps.store, logger)
	registry := tools.NewRegistry(logger, tools.NewCreateLeadTool(crm.NewMemoryClient()))
	return New(client, retrievalSvc, registry, deps.tickets, deps.db, logger)
}

func request(query string) Request {
	return Request{KnowledgeBaseID: "kb1", Query: query}
}

func TestProcessValidation(t *testing.T) {
	a := newTestAgent(t, agentDeps{})
	ctx := context.Background()

	if _, err := a.Process(ctx, Request{Query: "hello"}); err == nil {
		t.Error("expected error for missing knowledge base id")
	}
	if _, err := a.Process(ctx, Request{KnowledgeBaseID: "kb1", Query: "  "}); err == nil {
		t.Error("expected error for blank query")
	}
}

func TestClassificationFailureDefaultsToFAQ(t *testing.T) {
	// The classifier call fails outright; the knowledge handler still runs.
	provider := &scriptedProvider{
		Errs:      []error{fmt.Errorf("model exploded")},
		Responses: []*llm.CompletionResponse{nil, text("fallback answer")},
	}
	a := newTestAgent(t, agentDeps{provider: provider})

	resp, err := a.Process(context.Background(), request("what are your hours?"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Intent != IntentFAQ {
		t.Errorf("intent = %q, want FAQ", resp.Intent)
	}
	if resp.Message != "fallback answer" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestUnknownIntentTagDefaultsToFAQ(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("SHOPPING"), text("answer")},
	}
	a := newTestAgent(t, agentDeps{provider: provider})

	resp, err := a.Process(context.Background(), request("question"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Intent != IntentFAQ {
		t.Errorf("intent = %q, want FAQ", resp.Intent)
	}
}

func TestAgentRequestShortCircuits(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("AGENT_REQUEST")},
	}
	a := newTestAgent(t, agentDeps{provider: provider})

	resp, err := a.Process(context.Background(), request("let me talk to a human"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Intent != IntentAgentRequest {
		t.Errorf("intent = %q", resp.Intent)
	}
	if resp.Message != handoffMessage {
		t.Errorf("message = %q, want the handoff message", resp.Message)
	}
	// The handoff needs no second model call.
	if provider.calls() != 1 {
		t.Errorf("model calls = %d, want 1", provider.calls())
	}
}

func TestKnowledgeHandlerGroundsAnswerInContext(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("FAQ"), text("Refunds take five days.")},
	}
	store := &stubStore{results: []vectordb.SearchResult{
		{Text: "Refunds are processed within five business days."},
	}}
	a := newTestAgent(t, agentDeps{provider: provider, store: store})

	resp, err := a.Process(context.Background(), request("how long do refunds take?"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Message != "Refunds take five days." {
		t.Errorf("message = %q", resp.Message)
	}

	answerReq := provider.Requests[1]
	system := answerReq.Messages[0].Content
	if !strings.Contains(system, "Refunds are processed within five business days.") {
		t.Errorf("system prompt does not carry retrieved context: %q", system)
	}
}

func TestKnowledgeHandlerAdmitsMiss(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("FAQ"), text("I don't have that information.")},
	}
	a := newTestAgent(t, agentDeps{provider: provider, store: &stubStore{}})

	if _, err := a.Process(context.Background(), request("what is the meaning of life?")); err != nil {
		t.Fatalf("Process: %v", err)
	}

	system := provider.Requests[1].Messages[0].Content
	if !strings.Contains(system, "no") || !strings.Contains(system, "knowledge base") {
		t.Errorf("miss prompt not used: %q", system)
	}
}

func TestTicketHandlerAsksForMissingFields(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{
			classified("TICKET_CREATION"),
			text(`{"email":"","subject":"Broken login","description":"Cannot log in since Monday"}`),
		},
	}
	tickets := ticketing.NewMemoryAdapter()
	a := newTestAgent(t, agentDeps{provider: provider, tickets: tickets})

	resp, err := a.Process(context.Background(), request("my login is broken"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(resp.Message, "email") {
		t.Errorf("clarifying question does not mention email: %q", resp.Message)
	}
	if _, err := tickets.GetTicket(context.Background(), 1); err == nil {
		t.Error("ticket created despite missing fields")
	}
}

func TestTicketHandlerCreatesTicketWhenComplete(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{
			classified("TICKET_CREATION"),
			text(`{"email":"sam@example.com","subject":"Broken login","description":"Cannot log in since Monday"}`),
		},
	}
	tickets := ticketing.NewMemoryAdapter()
	a := newTestAgent(t, agentDeps{provider: provider, tickets: tickets})

	resp, err := a.Process(context.Background(), request("my login is broken, email sam@example.com"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(resp.Message, "#1") {
		t.Errorf("reply does not reference the ticket: %q", resp.Message)
	}

	ticket, err := tickets.GetTicket(context.Background(), 1)
	if err != nil {
		t.Fatalf("ticket not created: %v", err)
	}
	if ticket.Subject != "Broken login" {
		t.Errorf("subject = %q", ticket.Subject)
	}
}

func TestTransactionHandlerCannedResponses(t *testing.T) {
	cases := []struct {
		kind string
		want string
	}{
		{"Registration", "register"},
		{"Cancellation", "cancel"},
		{"Modification", "change"},
		{"Other", "tell me a bit more"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			provider := &scriptedProvider{
				Responses: []*llm.CompletionResponse{
					classified("TRANSACTION"),
					text(fmt.Sprintf(`{"kind":%q}`, tc.kind)),
				},
			}
			a := newTestAgent(t, agentDeps{provider: provider})

			resp, err := a.Process(context.Background(), request("I want to change my booking"))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if !strings.Contains(strings.ToLower(resp.Message), tc.want) {
				t.Errorf("message %q does not match kind %s", resp.Message, tc.kind)
			}
		})
	}
}

func TestSmallTalkUsesTools(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{
			classified("SMALL_TALK"),
			{ToolCalls: []llm.ToolCall{{
				ID:        "call_1",
				Name:      "create_lead",
				Arguments: `{"email":"pat@example.com","last_name":"Lee"}`,
			}}},
			text("Done, our sales team will reach out!"),
		},
	}
	a := newTestAgent(t, agentDeps{provider: provider})

	resp, err := a.Process(context.Background(), request("please have sales contact me, I'm Pat Lee, pat@example.com"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Message != "Done, our sales team will reach out!" {
		t.Errorf("message = %q", resp.Message)
	}

	// The tool outcome must have been fed back to the model.
	final := provider.Requests[2]
	var sawOutcome bool
	for _, m := range final.Messages {
		if m.Role == llm.RoleTool && strings.Contains(m.Content, "created") {
			sawOutcome = true
		}
	}
	if !sawOutcome {
		t.Error("tool outcome not present in follow-up request")
	}
}

func TestProcessPersistsConversation(t *testing.T) {
	db, err := knowledge.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("FAQ"), text("the answer")},
	}
	a := newTestAgent(t, agentDeps{provider: provider, db: db})

	resp, err := a.Process(context.Background(), request("a question"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatal("no conversation id assigned")
	}

	msgs, err := db.Messages(context.Background(), resp.ConversationID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Intent != "FAQ" {
		t.Errorf("intent = %q, want FAQ", msgs[0].Intent)
	}
}

func TestClassifierWindowsHistory(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("FAQ"), text("answer")},
	}
	a := newTestAgent(t, agentDeps{provider: provider})

	var history []Turn
	for i := 0; i < 20; i++ {
		history = append(history, Turn{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}
	req := request("latest question")
	req.Messages = history

	if _, err := a.Process(context.Background(), req); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// System prompt + 6 history turns + query.
	classifyReq := provider.Requests[0]
	if len(classifyReq.Messages) != 8 {
		t.Errorf("classifier saw %d messages, want 8", len(classifyReq.Messages))
	}
}

func newChatRouter(t *testing.T, a *Agent) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, a, nil)
	return r
}

func TestChatEndpointValidation(t *testing.T) {
	a := newTestAgent(t, agentDeps{})
	r := newChatRouter(t, a)

	cases := []struct {
		name string
		body string
	}{
		{"missing kb", `{"query":"hello"}`},
		{"empty messages", `{"knowledge_base_id":"kb1","messages":[]}`},
		{"no user message", `{"knowledge_base_id":"kb1"}`},
		{"malformed", `{{{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatEndpointLiftsLastUserMessage(t *testing.T) {
	provider := &scriptedProvider{
		Responses: []*llm.CompletionResponse{classified("FAQ"), text("hi there")},
	}
	a := newTestAgent(t, agentDeps{provider: provider})
	r := newChatRouter(t, a)

	body := `{"knowledge_base_id":"kb1","messages":[{"role":"user","content":"hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Message != "hi there" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Intent != IntentFAQ {
		t.Errorf("intent = %q", resp.Intent)
	}
}
