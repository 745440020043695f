package mailer

import (
	"context"
	"time"

	"github.com/jrsteele09/ipo-auth-server/internal/config"
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

var _ Mailer = (*SMTPMailer)(nil)

type SMTPMailer struct {
	host     string
	port     int
	secure   bool
	username string
	password string
	fromName string
	fromAddr string
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.GetSmtpHost() == "" {
		return nil, errors.New("[NewSMTPMailer] smtp host is required")
	}
	if cfg.GetSmtpFromAddress() == "" {
		return nil, errors.New("[NewSMTPMailer] from address is required")
	}
	return &SMTPMailer{
		host:     cfg.GetSmtpHost(),
		port:     cfg.GetSmtpPort(),
		secure:   cfg.GetSmtpSecure(),
		username: cfg.GetSmtpAccount(),
		password: cfg.GetSmtpPassword(),
		fromName: cfg.GetSmtpFromName(),
		fromAddr: cfg.GetSmtpFromAddress(),
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	mm := mail.NewMsg()
	if err := mm.FromFormat(m.fromName, m.fromAddr); err != nil {
		return "", errors.Wrap(err, "[SMTPMailer.Send] from")
	}
	if err := mm.To(msg.To); err != nil {
		return "", errors.Wrap(err, "[SMTPMailer.Send] to")
	}
	mm.Subject(msg.Subject)
	mm.SetMessageID()
	mm.SetDate()
	mm.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		mm.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	client, err := mail.NewClient(m.host, m.clientOptions()...)
	if err != nil {
		return "", errors.Wrap(err, "[SMTPMailer.Send] client")
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return "", errors.Wrap(err, "[SMTPMailer.Send] deliver")
	}

	var messageID string
	if ids := mm.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		messageID = ids[0]
	}
	return messageID, nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(15 * time.Second),
	}
	if m.secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	return opts
}
