package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversation groups an ordered message transcript for one knowledge base.
type Conversation struct {
	ID              string
	KnowledgeBaseID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StoredMessage is one turn in a persisted transcript. Seq is assigned on
// append and strictly increases within a conversation.
type StoredMessage struct {
	ID             string
	ConversationID string
	Seq            int
	Role           string
	Content        string
	Intent         string
	CreatedAt      time.Time
}

// CreateConversation starts a new empty conversation.
func (d *DB) CreateConversation(ctx context.Context, knowledgeBaseID string) (*Conversation, error) {
	if knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base id is required")
	}

	id := uuid.NewString()
	_, err := d.ExecContext(ctx,
		`INSERT INTO conversations (id, knowledge_base_id) VALUES (?, ?)`,
		id, knowledgeBaseID)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}
	return d.GetConversation(ctx, id)
}

// GetConversation fetches a conversation by id.
func (d *DB) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	row := d.QueryRowContext(ctx,
		`SELECT id, knowledge_base_id, created_at, updated_at FROM conversations WHERE id = ?`, id)

	var c Conversation
	err := row.Scan(&c.ID, &c.KnowledgeBaseID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}
	return &c, nil
}

// AppendMessage adds a message at the end of a conversation. The sequence
// number is derived inside a transaction so concurrent appends never collide.
func (d *DB) AppendMessage(ctx context.Context, conversationID, role, content, intent string) (*StoredMessage, error) {
	if role != "user" && role != "assistant" && role != "system" {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM conversation_messages WHERE conversation_id = ?`,
		conversationID).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("computing sequence: %w", err)
	}

	msg := &StoredMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Seq:            seq,
		Role:           role,
		Content:        content,
		Intent:         intent,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversation_messages (id, conversation_id, seq, role, content, intent) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Seq, msg.Role, msg.Content, msg.Intent)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = datetime('now') WHERE id = ?`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("touching conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing message: %w", err)
	}
	return msg, nil
}

// Messages returns a conversation's transcript in append order.
func (d *DB) Messages(ctx context.Context, conversationID string) ([]StoredMessage, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT id, conversation_id, seq, role, content, intent, created_at
		 FROM conversation_messages WHERE conversation_id = ? ORDER BY seq`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []StoredMessage
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Content, &m.Intent, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
