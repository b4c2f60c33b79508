// Package mailer sends shared supply lists by email.
// Delivery is an external collaborator; the shipped implementation only logs the message.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"supplies-service/pkg/logger"
)

// ListLine is one material of an emailed list
type ListLine struct {
	Name     string
	Quantity int
	Price    float64
}

// ListEmail is a list sent to a recipient
type ListEmail struct {
	From      string
	Recipient string
	Message   string
	ListID    string
	ListName  string
	Level     string
	Teacher   string
	SharedBy  string
	ShareURL  string
	Lines     []ListLine
	Total     float64
}

// Subject renders the subject line
func (e ListEmail) Subject() string {
	return fmt.Sprintf("School supplies list: %s", e.ListName)
}

// Body renders the plain-text body
func (e ListEmail) Body() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%s (%s)\n", e.ListName, e.Level)
	if e.Teacher != "" {
		fmt.Fprintf(&b, "Teacher: %s\n", e.Teacher)
	}
	for _, line := range e.Lines {
		fmt.Fprintf(&b, "- %s x%d: %.2f\n", line.Name, line.Quantity, line.Price*float64(line.Quantity))
	}
	fmt.Fprintf(&b, "Total: %.2f\n", e.Total)
	if e.ShareURL != "" {
		fmt.Fprintf(&b, "\n%s\n", e.ShareURL)
	}
	if e.SharedBy != "" {
		fmt.Fprintf(&b, "Shared by %s\n", e.SharedBy)
	}
	return b.String()
}

// Mailer delivers list emails
type Mailer interface {
	SendList(ctx context.Context, email ListEmail) error
}

// LogMailer writes the email to the request logger instead of delivering it
type LogMailer struct {
	from string
}

// NewLogMailer creates a mailer that logs messages sent from the given address
func NewLogMailer(from string) *LogMailer {
	return &LogMailer{from: from}
}

func (m *LogMailer) SendList(ctx context.Context, email ListEmail) error {
	if strings.TrimSpace(email.Recipient) == "" {
		return fmt.Errorf("recipient required")
	}
	if email.From == "" {
		email.From = m.from
	}

	logger.FromContext(ctx).Info("List email queued",
		zap.String("from", email.From),
		zap.String("recipient", email.Recipient),
		zap.String("list_id", email.ListID),
		zap.String("subject", email.Subject()),
		zap.Int("lines", len(email.Lines)),
		zap.Int("body_bytes", len(email.Body())))
	return nil
}
