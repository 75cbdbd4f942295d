package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendReservationCreated(ctx context.Context, email, name, resourceName string, startsAt, endsAt time.Time, pending bool) error {
	subject := fmt.Sprintf("Reservation Received - %s", resourceName)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation for %s from %s to %s has been received.",
		name, resourceName, startsAt.Format(time.RFC1123), endsAt.Format(time.RFC1123))
	if pending {
		body += "\n\nThis resource requires approval. We will notify you once an administrator confirms your booking."
	} else {
		body += "\n\nYour booking is confirmed."
	}
	body += "\n\nBest regards,\nThe CommunityShare Team"
	return s.send(email, subject, body)
}

func (s *emailService) SendReservationConfirmed(ctx context.Context, email, name, resourceName string, startsAt time.Time) error {
	subject := fmt.Sprintf("Reservation Confirmed - %s", resourceName)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation for %s starting %s has been confirmed.\n\nBest regards,\nThe CommunityShare Team",
		name, resourceName, startsAt.Format(time.RFC1123))
	return s.send(email, subject, body)
}

func (s *emailService) SendReservationCancelled(ctx context.Context, email, name, resourceName, reason string) error {
	subject := fmt.Sprintf("Reservation Cancelled - %s", resourceName)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation for %s has been cancelled.", name, resourceName)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nThe CommunityShare Team"
	return s.send(email, subject, body)
}

func (s *emailService) SendUsageVerified(ctx context.Context, email, name, resourceName string) error {
	subject := fmt.Sprintf("Usage Verified - %s", resourceName)
	body := fmt.Sprintf("Hello %s,\n\nYour recorded usage of %s has been reviewed and verified.\n\nBest regards,\nThe CommunityShare Team",
		name, resourceName)
	return s.send(email, subject, body)
}

func (s *emailService) SendUsageDisputed(ctx context.Context, email, name, resourceName, adminNotes string) error {
	subject := fmt.Sprintf("Usage Disputed - %s", resourceName)
	body := fmt.Sprintf("Hello %s,\n\nYour recorded usage of %s has been disputed by an administrator.", name, resourceName)
	if adminNotes != "" {
		body += fmt.Sprintf("\n\nNotes: %s", adminNotes)
	}
	body += "\n\nPlease contact the administrators to resolve this.\n\nBest regards,\nThe CommunityShare Team"
	return s.send(email, subject, body)
}

func (s *emailService) SendInvoiceSent(ctx context.Context, email, name, invoiceNumber string, total decimal.Decimal, dueDate *time.Time) error {
	subject := fmt.Sprintf("Invoice %s", invoiceNumber)
	body := fmt.Sprintf("Hello %s,\n\nYour invoice %s for %s is ready.", name, invoiceNumber, total.StringFixed(2))
	if dueDate != nil {
		body += fmt.Sprintf("\n\nPayment is due by %s.", dueDate.Format("2006-01-02"))
	}
	body += "\n\nBest regards,\nThe CommunityShare Team"
	return s.send(email, subject, body)
}

func (s *emailService) SendInvoiceOverdue(ctx context.Context, email, name, invoiceNumber string, total decimal.Decimal) error {
	subject := fmt.Sprintf("Invoice Overdue - %s", invoiceNumber)
	body := fmt.Sprintf("Hello %s,\n\nInvoice %s for %s is past due. Please arrange payment as soon as possible.\n\nBest regards,\nThe CommunityShare Team",
		name, invoiceNumber, total.StringFixed(2))
	return s.send(email, subject, body)
}
