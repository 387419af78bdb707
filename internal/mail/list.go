package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"

	"matifood/internal/config"
	"matifood/internal/domain"
)

var ErrNotSubscribed = errors.New("mail: email not found in newsletter")

// Subscribers is the newsletter audience.
type Subscribers interface {
	// Subscribe adds or re-activates email. created is false when the address
	// was already known.
	Subscribe(ctx context.Context, email, name string) (created bool, err error)
	Unsubscribe(ctx context.Context, email string) error
	Count(ctx context.Context) (int64, error)
}

// MailgunList keeps subscribers in a Mailgun mailing list.
type MailgunList struct {
	mg   *mailgun.MailgunImpl
	list string
	log  *zap.Logger
}

func NewMailgunList(cfg config.MailConfig, log *zap.Logger) *MailgunList {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailgunList{mg: newClient(cfg), list: cfg.NewsletterList, log: log.With(zap.String("component", "mail.list"))}
}

func (l *MailgunList) Subscribe(ctx context.Context, email, name string) (bool, error) {
	email = normalize(email)
	_, err := l.mg.GetMember(ctx, email, l.list)
	created := mailgun.GetStatusFromErr(err) == http.StatusNotFound
	if err != nil && !created {
		return false, fmt.Errorf("mail: lookup member: %w", err)
	}
	err = l.mg.CreateMember(ctx, true, l.list, mailgun.Member{
		Address:    email,
		Name:       name,
		Subscribed: mailgun.Subscribed,
	})
	if err != nil {
		return false, fmt.Errorf("mail: add member: %w", err)
	}
	return created, nil
}

func (l *MailgunList) Unsubscribe(ctx context.Context, email string) error {
	email = normalize(email)
	_, err := l.mg.UpdateMember(ctx, email, l.list, mailgun.Member{Subscribed: mailgun.Unsubscribed})
	if mailgun.GetStatusFromErr(err) == http.StatusNotFound {
		return ErrNotSubscribed
	}
	if err != nil {
		return fmt.Errorf("mail: update member: %w", err)
	}
	return nil
}

func (l *MailgunList) Count(ctx context.Context) (int64, error) {
	ml, err := l.mg.GetMailingList(ctx, l.list)
	if err != nil {
		return 0, fmt.Errorf("mail: get list: %w", err)
	}
	return int64(ml.MembersCount), nil
}

// MemoryList keeps subscribers in process memory.
type MemoryList struct {
	mu   sync.Mutex
	subs map[string]domain.Subscription
}

func NewMemoryList() *MemoryList {
	return &MemoryList{subs: map[string]domain.Subscription{}}
}

func (m *MemoryList) Subscribe(_ context.Context, email, name string) (bool, error) {
	email = normalize(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, known := m.subs[email]
	if name == "" {
		name = prev.Name
	}
	m.subs[email] = domain.Subscription{Email: email, Name: name, Subscribed: true}
	return !known, nil
}

func (m *MemoryList) Unsubscribe(_ context.Context, email string) error {
	email = normalize(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[email]
	if !ok {
		return ErrNotSubscribed
	}
	s.Subscribed = false
	m.subs[email] = s
	return nil
}

func (m *MemoryList) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.subs {
		if s.Subscribed {
			n++
		}
	}
	return n, nil
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
