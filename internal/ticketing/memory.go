package ticketing

import (
	"context"
	"fmt"
	"sync"
)

// MemoryAdapter keeps tickets in memory. It backs development setups and
// tests where no helpdesk account is configured.
type MemoryAdapter struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*Ticket
}

// NewMemoryAdapter creates an empty MemoryAdapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{nextID: 1, tickets: make(map[int64]*Ticket)}
}

func (a *MemoryAdapter) Name() string { return "memory" }

func (a *MemoryAdapter) CreateTicket(ctx context.Context, req TicketRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	t := &Ticket{
		ID:       a.nextID,
		Subject:  req.Subject,
		Status:   StatusName(newTicketStatus),
		Priority: req.Priority,
	}
	a.tickets[t.ID] = t
	a.nextID++

	copied := *t
	return &copied, nil
}

func (a *MemoryAdapter) GetTicket(ctx context.Context, id int64) (*Ticket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %d not found", id)
	}
	copied := *t
	return &copied, nil
}
