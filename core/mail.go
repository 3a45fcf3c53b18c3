package core

import "net/mail"

type EmailMessage struct {
	To      []mail.Address
	Cc      []mail.Address
	Bcc     []mail.Address
	Subject string
	BodyStr string
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.BodyStr != "" }

// EmailService is any service that can send emails
type EmailService interface {
	// SendMessages sends messages concurrently
	SendMessages(messages ...*EmailMessage)
}
