// Package mail relays contact submissions to the team inbox and manages the
// newsletter list, through Mailgun when configured and in-process otherwise.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"

	"matifood/internal/config"
	applog "matifood/internal/log"
)

const sendTimeout = 30 * time.Second

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	// Send hands the message to the provider and returns its message id.
	Send(ctx context.Context, m Message) (string, error)
}

// MailgunSender sends through the Mailgun messages API.
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
	log  *zap.Logger
}

func newClient(cfg config.MailConfig) *mailgun.MailgunImpl {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return mg
}

func NewMailgunSender(cfg config.MailConfig, log *zap.Logger) *MailgunSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailgunSender{mg: newClient(cfg), from: cfg.From, log: log.With(zap.String("component", "mail.mailgun"))}
}

func (s *MailgunSender) Send(ctx context.Context, m Message) (string, error) {
	msg := s.mg.NewMessage(s.from, m.Subject, m.Text, m.To)
	if m.HTML != "" {
		msg.SetHtml(m.HTML)
	}
	if m.ReplyTo != "" {
		msg.SetReplyTo(m.ReplyTo)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, id, err := s.mg.Send(sendCtx, msg)
	if err != nil {
		s.log.Error("mail.send.fail", zap.String("to", applog.Fingerprint(m.To)), zap.Error(err))
		return "", fmt.Errorf("mail: send: %w", err)
	}
	s.log.Info("mail.send.ok", zap.String("to", applog.Fingerprint(m.To)), zap.String("message_id", id))
	return id, nil
}

// LogSender writes messages to the log instead of delivering them. Used when
// no Mailgun credentials are configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, m Message) (string, error) {
	l := s.Log
	if l == nil {
		l = zap.NewNop()
	}
	id := fmt.Sprintf("log-%d", time.Now().UnixNano())
	l.Info("mail.send.logged",
		zap.String("to", applog.Fingerprint(m.To)),
		zap.String("subject", m.Subject),
		zap.Int("text_bytes", len(m.Text)),
		zap.String("message_id", id),
	)
	return id, nil
}
