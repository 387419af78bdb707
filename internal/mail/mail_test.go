package mail_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matifood/internal/config"
	"matifood/internal/domain"
	"matifood/internal/mail"
)

type captureSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, m mail.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.sent = append(c.sent, m)
	return "id-1", nil
}

func TestRelayContact(t *testing.T) {
	s := &captureSender{}
	r := mail.NewRelay(s, nil, "hello@matifood.com", "Mati Food")

	id, err := r.Contact(context.Background(), domain.ContactSubmission{
		ID:         "01HZY",
		Name:       "Sarah <b>",
		Email:      "sarah@example.com",
		Message:    "Do you ship to Oregon?",
		Newsletter: true,
		CreatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	require.Len(t, s.sent, 1)
	m := s.sent[0]
	assert.Equal(t, "hello@matifood.com", m.To)
	assert.Equal(t, "Sarah <b> <sarah@example.com>", m.ReplyTo)
	assert.Equal(t, "[Mati Food] Contact from Sarah <b>", m.Subject)
	assert.Contains(t, m.Text, "Do you ship to Oregon?")
	assert.Contains(t, m.Text, "Newsletter: yes")
	assert.Contains(t, m.Text, "01HZY")
	assert.Contains(t, m.HTML, "Sarah &lt;b&gt;")
	assert.NotContains(t, m.HTML, "Sarah <b>")
}

func TestRelayPropagatesSendFailure(t *testing.T) {
	boom := errors.New("provider down")
	r := mail.NewRelay(&captureSender{err: boom}, nil, "inbox@matifood.com", "Mati Food")
	_, err := r.Contact(context.Background(), domain.ContactSubmission{Name: "A", Email: "a@example.com"})
	assert.True(t, errors.Is(err, boom))
}

func TestRelayWelcome(t *testing.T) {
	s := &captureSender{}
	r := mail.NewRelay(s, mail.NewTemplates(), "inbox@matifood.com", "Mati Food")
	_, err := r.Welcome(context.Background(), domain.Subscription{Email: "a@example.com", Name: "Ana"})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "a@example.com", s.sent[0].To)
	assert.True(t, strings.HasPrefix(s.sent[0].Text, "Hi Ana,"))
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	l := mail.NewMemoryList()

	created, err := l.Subscribe(ctx, "Ana@Example.com", "Ana")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = l.Subscribe(ctx, "ana@example.com ", "")
	require.NoError(t, err)
	assert.False(t, created)

	n, _ := l.Count(ctx)
	assert.Equal(t, int64(1), n)

	require.NoError(t, l.Unsubscribe(ctx, "ANA@example.com"))
	n, _ = l.Count(ctx)
	assert.Equal(t, int64(0), n)

	assert.True(t, errors.Is(l.Unsubscribe(ctx, "nobody@example.com"), mail.ErrNotSubscribed))
}

func TestMailgunSender(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/mg.matifood.com/messages") {
			http.NotFound(w, r)
			return
		}
		got = map[string]string{}
		for _, k := range []string{"from", "to", "subject", "text", "h:Reply-To"} {
			got[k] = r.FormValue(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<abc@mg.matifood.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	s := mail.NewMailgunSender(config.MailConfig{
		Domain:  "mg.matifood.com",
		APIKey:  "key-test",
		APIBase: srv.URL + "/v3",
		From:    "Mati Food <no-reply@matifood.com>",
	}, nil)

	id, err := s.Send(context.Background(), mail.Message{
		To:      "hello@matifood.com",
		ReplyTo: "sarah@example.com",
		Subject: "Hi",
		Text:    "Body",
	})
	require.NoError(t, err)
	assert.Equal(t, "<abc@mg.matifood.com>", id)
	assert.Equal(t, "Mati Food <no-reply@matifood.com>", got["from"])
	assert.Equal(t, "hello@matifood.com", got["to"])
	assert.Equal(t, "Hi", got["subject"])
	assert.Equal(t, "sarah@example.com", got["h:Reply-To"])
}
