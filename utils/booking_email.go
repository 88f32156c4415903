package utils

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"
)

// SMTPSettings holds the outgoing mail server. An empty Host, Port, Username or Password
// switches the mailer to log-only mode.
type SMTPSettings struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

// Configured reports whether real delivery is possible.
func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != ""
}

// BookingEmail is what goes into a booking confirmation message.
type BookingEmail struct {
	Recipient    string
	CustomerName string
	Reference    string
	TourTitle    string
	StartDate    string
	EndDate      string
	Participants int
	TotalPrice   string
}

// Mailer sends booking notifications.
type Mailer struct {
	Settings SMTPSettings
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(settings SMTPSettings) *Mailer {
	return &Mailer{Settings: settings, send: smtp.SendMail}
}

// SendBookingConfirmation mails the booking summary. With SMTP unset it only logs.
func (m *Mailer) SendBookingConfirmation(e BookingEmail) error {
	if strings.TrimSpace(e.Recipient) == "" {
		return fmt.Errorf("recipient email missing")
	}
	if !m.Settings.Configured() {
		log.Printf("[MOCK EMAIL] to:%s booking:%s tour:%s participants:%d total:%s",
			e.Recipient, e.Reference, e.TourTitle, e.Participants, e.TotalPrice)
		return nil
	}

	s := m.Settings
	from := fmt.Sprintf("%s <%s>", s.FromName, s.Username)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	if err := m.send(addr, auth, s.Username, []string{e.Recipient}, BuildBookingMessage(from, e)); err != nil {
		log.Printf("❌ Failed to send booking email to %s: %v", e.Recipient, err)
		return err
	}
	log.Printf("📨 Booking email sent to %s (reference %s)", e.Recipient, e.Reference)
	return nil
}

// BuildBookingMessage renders the multipart/alternative MIME message.
func BuildBookingMessage(from string, e BookingEmail) []byte {
	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	name := safe(e.CustomerName)
	if name == "" {
		name = "traveller"
	}
	ref := safe(e.Reference)
	title := safe(e.TourTitle)

	boundary := "----=_TOUR_BOOKING_BOUNDARY"
	subject := fmt.Sprintf("Booking received: %s", ref)

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We received your booking for %s.\n\n"+
			"Booking Reference: %s\n"+
			"Dates: %s to %s\n"+
			"Participants: %d\n"+
			"Total: %s\n\n"+
			"Your booking is pending until our team confirms it.\n",
		name, title, ref, safe(e.StartDate), safe(e.EndDate), e.Participants, safe(e.TotalPrice),
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Booking received</title></head>
<body style="font-family:Arial, Helvetica, sans-serif; color:#222;">
  <h2>Booking received</h2>
  <p>Hi %s,</p>
  <p>We received your booking for <strong>%s</strong>.</p>
  <p><strong>Booking Reference:</strong> %s<br>
     <strong>Dates:</strong> %s to %s<br>
     <strong>Participants:</strong> %d<br>
     <strong>Total:</strong> %s</p>
  <p>Your booking is pending until our team confirms it.</p>
</body>
</html>`,
		html.EscapeString(name), html.EscapeString(title), html.EscapeString(ref),
		html.EscapeString(safe(e.StartDate)), html.EscapeString(safe(e.EndDate)),
		e.Participants, html.EscapeString(safe(e.TotalPrice)),
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", safe(e.Recipient)))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(sb.String())
}
