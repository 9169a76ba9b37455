package mailer

import (
	"fmt"
	"io"

	"charity-run-backend/internal/config"
	"charity-run-backend/pkg/logger"

	"gopkg.in/gomail.v2"
)

// QrInline is one QR image embedded into the confirmation email, grouped by
// race category.
type QrInline struct {
	CategoryName string
	ClaimURL     string
	PNG          []byte
}

type Mailer interface {
	SendAcknowledgement(to, name string, registrationID string, amount int) error
	SendConfirmation(to, name, accessCode string, qrs []QrInline) error
	SendDecline(to, name, reason string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// noopMailer is used when MAIL_ENABLED=false (local development).
type noopMailer struct{}

func New(cfg *config.Config) Mailer {
	if !cfg.MailEnabled {
		return &noopMailer{}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

func (m *smtpMailer) SendAcknowledgement(to, name, registrationID string, amount int) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "We received your registration")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your registration <b>%s</b> has been received and is awaiting payment review.</p>
		<p>Total amount: <b>%d</b></p>
		<p>You will get another email once your payment proof has been verified.</p>`,
		name, registrationID, amount,
	))
	return m.dialer.DialAndSend(msg)
}

func (m *smtpMailer) SendConfirmation(to, name, accessCode string, qrs []QrInline) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Payment confirmed - your race pack QR codes")

	body := fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your payment has been confirmed. Your access code is <b>%s</b>.</p>
		<p>Show the QR code below at the race-pack counter, one per category:</p>`,
		name, accessCode,
	)
	for i, qr := range qrs {
		cid := fmt.Sprintf("qr%d.png", i)
		body += fmt.Sprintf(
			`<p><b>%s</b><br><img src="cid:%s" alt="claim QR"><br><a href="%s">%s</a></p>`,
			qr.CategoryName, cid, qr.ClaimURL, qr.ClaimURL,
		)
		png := qr.PNG
		msg.Embed(cid, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		}))
	}
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}

func (m *smtpMailer) SendDecline(to, name, reason string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Payment declined")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Unfortunately your payment proof could not be verified.</p>
		<p>Reason: %s</p>
		<p>Please contact the committee or submit a new registration.</p>`,
		name, reason,
	))
	return m.dialer.DialAndSend(msg)
}

func (m *noopMailer) SendAcknowledgement(to, _ string, registrationID string, _ int) error {
	logger.Infof("mail disabled, skipping acknowledgement to %s for %s", to, registrationID)
	return nil
}

func (m *noopMailer) SendConfirmation(to, _, _ string, _ []QrInline) error {
	logger.Infof("mail disabled, skipping confirmation to %s", to)
	return nil
}

func (m *noopMailer) SendDecline(to, _, _ string) error {
	logger.Infof("mail disabled, skipping decline notice to %s", to)
	return nil
}
