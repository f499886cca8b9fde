// Package notify delivers vendor messages over WhatsApp (Twilio), Telegram or the log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message kinds
const (
	KindJobOrderIssued      = "job_order_issued"
	KindReceiptConfirmation = "receipt_confirmation"
)

// ErrNoRecipient means the vendor has no address on the configured channel.
var ErrNoRecipient = errors.New("no recipient for channel")

// Message is one outbound vendor notification.
type Message struct {
	Kind   string
	Phone  string
	ChatID int64
	Body   string
}

// Notifier sends a message on one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// FormatPhone normalises an Indian number to E.164: a leading '+' is kept,
// otherwise a trunk '0' is dropped and +91 prepended.
func FormatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+91" + strings.TrimPrefix(phone, "0")
}

// Line is a material line shown in a message.
type Line struct {
	MaterialType string
	Quantity     float64
	Unit         string
}

// OrderInfo carries the job order fields rendered into messages.
type OrderInfo struct {
	Number             string
	JobWorkType        string
	Status             string
	Issued             []Line
	ExpectedCompletion *time.Time
}

func writeLines(b *strings.Builder, lines []Line) {
	for i, l := range lines {
		fmt.Fprintf(b, "%d. %s: %s %s\n", i+1, l.MaterialType, strconv.FormatFloat(l.Quantity, 'f', -1, 64), l.Unit)
	}
}

// JobOrderIssued renders the message sent when materials leave for the vendor.
func JobOrderIssued(o OrderInfo) string {
	var b strings.Builder
	b.WriteString("*New Job Order Assigned*\n\n")
	fmt.Fprintf(&b, "*Job Order Number:* %s\n", o.Number)
	fmt.Fprintf(&b, "*Job Work Type:* %s\n", o.JobWorkType)
	fmt.Fprintf(&b, "*Status:* %s\n\n", o.Status)
	b.WriteString("*Materials Issued:*\n")
	writeLines(&b, o.Issued)
	expected := "Not specified"
	if o.ExpectedCompletion != nil {
		expected = o.ExpectedCompletion.Format("02/01/2006")
	}
	fmt.Fprintf(&b, "\n*Expected Completion:* %s\n\n", expected)
	b.WriteString("Please acknowledge receipt of materials.\n\nThank you,\nNool ERP System")
	return b.String()
}

// ReceiptConfirmation renders the message sent after materials come back.
func ReceiptConfirmation(orderNumber string, received []Line) string {
	var b strings.Builder
	b.WriteString("*Material Receipt Confirmed*\n\n")
	fmt.Fprintf(&b, "*Job Order:* %s\n\n", orderNumber)
	b.WriteString("*Materials Received:*\n")
	writeLines(&b, received)
	b.WriteString("\nThank you for the update.\nNool ERP System")
	return b.String()
}
