package mailer

import (
	"fmt"
	"html"
	"time"

	"mealbox-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// CancellationNotice is what the customer is told when an order or the whole
// subscription is cancelled.
type CancellationNotice struct {
	CustomerName  string
	Reason        string
	DeliveryDates []time.Time
	ByOperator    bool
}

type IEmailService interface {
	SendCancellationNotice(toEmail string, notice CancellationNotice) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

// NewEmailService returns a no-op service when host is empty so local and CI
// environments need no SMTP server.
func NewEmailService(host string, port int, username, password, senderName string, logger logger.ILogger) IEmailService {
	s := &emailService{
		senderEmail: username,
		senderName:  senderName,
		logger:      logger,
	}
	if host != "" {
		s.dialer = gomail.NewDialer(host, port, username, password)
	}
	return s
}

func (s *emailService) SendCancellationNotice(toEmail string, notice CancellationNotice) error {
	if s.dialer == nil {
		s.logger.Debug("MAILER", "SMTP not configured, notice skipped", map[string]interface{}{"to": toEmail})
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your meal delivery has been cancelled")
	m.SetBody("text/html", cancellationBody(notice))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send cancellation notice", map[string]interface{}{
			"to":    toEmail,
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Cancellation notice sent", map[string]interface{}{"to": toEmail})
	return nil
}

func cancellationBody(n CancellationNotice) string {
	name := n.CustomerName
	if name == "" {
		name = "there"
	}
	intro := "Your subscription has been cancelled as requested."
	if n.ByOperator {
		intro = "Our team has cancelled the following delivery."
	}

	dates := ""
	for _, d := range n.DeliveryDates {
		dates += fmt.Sprintf("<li>%s</li>", d.Format("Monday, 2 Jan 2006"))
	}
	if dates != "" {
		dates = "<ul>" + dates + "</ul>"
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>%s</p>
			%s
			<p><strong>Reason:</strong> %s</p>
			<p>If this looks wrong, reply to this email and we will sort it out.</p>
		</div>
	`, html.EscapeString(name), intro, dates, html.EscapeString(n.Reason))
}
