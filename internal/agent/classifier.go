package agent

import (
	"context"
	"log/slog"

	"github.com/ragdesk/ragdesk/internal/llm"
)

// historyWindow is how many trailing turns the classifier sees.
const historyWindow = 6

// Classifier assigns an intent to the latest customer message.
type Classifier struct {
	client *llm.Client
	logger *slog.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(client *llm.Client, logger *slog.Logger) *Classifier {
	return &Classifier{client: client, logger: logger}
}

type classifyResult struct {
	Intent string `json:"intent"`
	Reason string `json:"reason"`
}

// Classify determines the intent of the latest message. It never fails: any
// model or parse error, and any tag outside the known set, degrades to FAQ
// so the request still reaches the knowledge handler.
func (c *Classifier) Classify(ctx context.Context, query string, history []Turn) Classification {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: classifyPrompt}}
	for _, turn := range trimHistory(history) {
		messages = append(messages, llm.Message{Role: llm.Role(turn.Role), Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	result, err := llm.GenerateObject[classifyResult](ctx, c.client, llm.CompletionRequest{
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("intent classification failed", "error", err)
		return Classification{Intent: IntentFAQ, Reason: "classification failed, defaulting to FAQ"}
	}

	intent := Intent(result.Intent)
	if !intent.Valid() {
		c.logger.Warn("classifier returned unknown intent", "intent", result.Intent)
		return Classification{Intent: IntentFAQ, Reason: "classification failed, defaulting to FAQ"}
	}

	return Classification{Intent: intent, Reason: result.Reason}
}

// trimHistory keeps the trailing window of turns.
func trimHistory(history []Turn) []Turn {
	if len(history) <= historyWindow {
		return history
	}
	return history[len(history)-historyWindow:]
}
