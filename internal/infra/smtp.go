package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"colectas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending the corte CSV by email.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// EnviarCorte sends the day's CSV export as an attachment.
func (m *Mailer) EnviarCorte(para, asunto, cuerpo, nombreArchivo string, csv []byte) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{para}
	e.Subject = asunto
	e.Text = []byte(cuerpo)

	if _, err := e.Attach(bytes.NewReader(csv), nombreArchivo, "text/csv"); err != nil {
		return fmt.Errorf("mailer: attach CSV: %w", err)
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
