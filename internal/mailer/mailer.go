package mailer

import (
	"gopkg.in/gomail.v2"
)

// メール送信の約束。usecaseとworkerはこれだけに依存する。
type Mailer interface {
	Send(to string, subject string, body string) error
}

// SMTP実装（gomail）
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// DI
func NewSMTPMailer(host string, port int, user string, pass string, from string) *SMTPMailer {
	return &SMTPMailer{
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
	}
}

func (m *SMTPMailer) Send(to string, subject string, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}
