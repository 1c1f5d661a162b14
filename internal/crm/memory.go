package crm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryClient keeps leads in memory with email-based duplicate detection.
// It backs development setups and tests where no CRM account is configured.
type MemoryClient struct {
	mu     sync.Mutex
	nextID int
	byMail map[string]string
}

// NewMemoryClient creates an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{nextID: 1, byMail: make(map[string]string)}
}

func (c *MemoryClient) Name() string { return "memory" }

func (c *MemoryClient) CreateLead(ctx context.Context, lead Lead) (*LeadResult, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(lead.Email)
	if id, ok := c.byMail[key]; ok {
		return &LeadResult{Status: StatusDuplicate, LeadID: id}, nil
	}

	id := fmt.Sprintf("lead-%d", c.nextID)
	c.nextID++
	c.byMail[key] = id
	return &LeadResult{Status: StatusCreated, LeadID: id}, nil
}
