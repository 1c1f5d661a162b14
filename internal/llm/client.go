package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// maxToolSteps bounds the number of model round-trips in one tool-augmented
// generation, so a model that keeps requesting tools cannot loop forever.
const maxToolSteps = 10

// ToolExecutor runs one tool call and returns its result payload, which is
// fed back to the model verbatim. Implementations must map execution failures
// into a payload rather than an error wherever the model should see and react
// to the outcome; a returned error aborts the whole generation.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) (string, error)
}

// Client is the model invocation layer. Every call runs as a sequence of
// attempts: attempt one uses the primary provider, every later attempt the
// fallback. A failed attempt is retried only when the error looks transient;
// attempts never run concurrently.
type Client struct {
	primary    Provider
	fallback   Provider
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a Client. maxRetries is the number of fallback attempts
// after the primary one; values below zero are treated as zero.
func NewClient(primary, fallback Provider, maxRetries int, logger *slog.Logger) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		primary:    primary,
		fallback:   fallback,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// providerFor selects the provider for the given 1-based attempt number.
func (c *Client) providerFor(attempt int) Provider {
	if attempt > 1 {
		return c.fallback
	}
	return c.primary
}

// complete runs the bounded retry loop around Provider.Complete.
func (c *Client) complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	maxAttempts := c.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		provider := c.providerFor(attempt)

		c.logger.Debug("model attempt", "attempt", attempt, "provider", provider.Name())
		resp, err := provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt < maxAttempts && IsTransient(err) {
			c.logger.Warn("model call failed, retrying with fallback",
				"attempt", attempt, "provider", provider.Name(), "error", err)
			continue
		}

		c.logger.Error("model call failed", "attempt", attempt, "provider", provider.Name(), "error", err)
		if !IsTransient(err) {
			return nil, err
		}
		break
	}

	return nil, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

// GenerateText generates free text.
func (c *Client) GenerateText(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateObject generates a value of type T via JSON-constrained output.
// A response that cannot be parsed into T is a non-transient failure.
func GenerateObject[T any](ctx context.Context, c *Client, req CompletionRequest) (T, error) {
	var zero T

	req.JSONMode = true
	resp, err := c.complete(ctx, req)
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &out); err != nil {
		return zero, fmt.Errorf("parsing structured response: %w", err)
	}
	return out, nil
}

// GenerateWithTools runs a tool-augmented generation: the model may request
// tool executions, whose results are appended to the conversation before the
// next round trip. Returns the model's final text once it stops requesting
// tools.
func (c *Client) GenerateWithTools(ctx context.Context, req CompletionRequest, exec ToolExecutor) (string, error) {
	messages := make([]Message, len(req.Messages))
	copy(messages, req.Messages)

	for step := 0; step < maxToolSteps; step++ {
		stepReq := req
		stepReq.Messages = messages

		resp, err := c.complete(ctx, stepReq)
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, Message{
			Role:      RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Sequential execution: tool side effects must not race each other.
		for _, call := range resp.ToolCalls {
			c.logger.Info("executing tool", "tool", call.Name)
			result, err := exec.Execute(ctx, call)
			if err != nil {
				return "", fmt.Errorf("executing tool %s: %w", call.Name, err)
			}
			messages = append(messages, Message{
				Role:       RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("tool loop exceeded %d steps", maxToolSteps)
}

// stripFences removes a surrounding markdown code fence from an LLM response,
// a common artifact even in JSON mode.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return raw
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
