// Package crm creates sales leads on an external CRM platform.
package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Lead is the contact information captured from a conversation.
type Lead struct {
	Email     string
	FirstName string
	LastName  string
	Company   string
	Phone     string
	Source    string
}

// ErrInvalidLead marks leads rejected before reaching the platform.
var ErrInvalidLead = errors.New("invalid lead")

// Validate checks required fields.
func (l *Lead) Validate() error {
	if !strings.Contains(l.Email, "@") || strings.HasPrefix(l.Email, "@") || strings.HasSuffix(l.Email, "@") {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidLead, l.Email)
	}
	if strings.TrimSpace(l.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalidLead)
	}
	return nil
}

// LeadStatus is the outcome of a create call. The platform owns duplicate
// detection, so retrying a create is safe: the second call reports
// StatusDuplicate instead of adding a second record.
type LeadStatus string

const (
	StatusCreated   LeadStatus = "created"
	StatusDuplicate LeadStatus = "duplicate"
)

// LeadResult is the platform's answer to a create call.
type LeadResult struct {
	Status LeadStatus
	LeadID string
}

// LeadClient is the interface to a CRM platform.
type LeadClient interface {
	CreateLead(ctx context.Context, lead Lead) (*LeadResult, error)
	Name() string
}
