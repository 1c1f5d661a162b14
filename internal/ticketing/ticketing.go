// Package ticketing creates and looks up support tickets on an external
// helpdesk platform.
package ticketing

import (
	"context"
	"fmt"
	"strings"
)

// TicketRequest carries the fields needed to open a ticket.
type TicketRequest struct {
	Email       string
	Subject     string
	Description string
	Priority    int
}

// Validate checks a request before it goes to the platform. Priorities map
// onto the helpdesk scale of 1 (low) to 4 (urgent).
func (r *TicketRequest) Validate() error {
	if !strings.Contains(r.Email, "@") || strings.HasPrefix(r.Email, "@") || strings.HasSuffix(r.Email, "@") {
		return fmt.Errorf("invalid email %q", r.Email)
	}
	if len(strings.TrimSpace(r.Subject)) < 3 {
		return fmt.Errorf("subject must be at least 3 characters")
	}
	if len(strings.TrimSpace(r.Description)) < 5 {
		return fmt.Errorf("description must be at least 5 characters")
	}
	if r.Priority < 1 || r.Priority > 4 {
		return fmt.Errorf("priority must be between 1 and 4, got %d", r.Priority)
	}
	return nil
}

// Ticket is a created or fetched helpdesk ticket.
type Ticket struct {
	ID       int64
	Subject  string
	Status   string
	Priority int
}

// Adapter is the interface to a helpdesk platform.
type Adapter interface {
	CreateTicket(ctx context.Context, req TicketRequest) (*Ticket, error)
	GetTicket(ctx context.Context, id int64) (*Ticket, error)
	Name() string
}

// StatusName translates a platform status code to a readable name.
func StatusName(code int) string {
	switch code {
	case 2:
		return "Open"
	case 3:
		return "Pending"
	case 4:
		return "Resolved"
	case 5:
		return "Closed"
	default:
		return "Unknown"
	}
}
