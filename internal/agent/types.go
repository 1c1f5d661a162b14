// Package agent orchestrates support conversations: it classifies what the
// customer wants and routes to the matching handler.
package agent

// Intent is the closed set of conversation intents.
type Intent string

const (
	IntentAgentRequest   Intent = "AGENT_REQUEST"
	IntentTransaction    Intent = "TRANSACTION"
	IntentTicketCreation Intent = "TICKET_CREATION"
	IntentFAQ            Intent = "FAQ"
	IntentSmallTalk      Intent = "SMALL_TALK"
)

// Valid reports whether the tag is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentAgentRequest, IntentTransaction, IntentTicketCreation, IntentFAQ, IntentSmallTalk:
		return true
	}
	return false
}

// Turn is one prior message in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one customer message plus its context.
type Request struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
	ConversationID  string `json:"conversation_id,omitempty"`
	Query           string `json:"query"`
	Messages        []Turn `json:"messages,omitempty"`
}

// Response is the assistant's reply.
type Response struct {
	Message        string `json:"message"`
	Intent         Intent `json:"intent"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Classification is the intent classifier's verdict. Reason is kept for
// transcripts and debugging, never shown to the customer.
type Classification struct {
	Intent Intent
	Reason string
}
