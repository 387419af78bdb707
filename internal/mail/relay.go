package mail

import (
	"context"
	"fmt"
	"time"

	"matifood/internal/domain"
)

// Relay forwards accepted contact submissions to the team inbox.
type Relay struct {
	sender Sender
	tmpl   *Templates
	inbox  string
	brand  string
}

func NewRelay(sender Sender, tmpl *Templates, inbox, brand string) *Relay {
	if tmpl == nil {
		tmpl = NewTemplates()
	}
	return &Relay{sender: sender, tmpl: tmpl, inbox: inbox, brand: brand}
}

func (r *Relay) Contact(ctx context.Context, sub domain.ContactSubmission) (string, error) {
	data := map[string]any{
		"id":         sub.ID,
		"name":       sub.Name,
		"email":      sub.Email,
		"message":    sub.Message,
		"newsletter": sub.Newsletter,
		"received":   sub.CreatedAt.UTC().Format(time.RFC1123),
	}
	text, err := r.tmpl.Render("contact.txt", data)
	if err != nil {
		return "", err
	}
	html, err := r.tmpl.Render("contact.html", data)
	if err != nil {
		return "", err
	}
	return r.sender.Send(ctx, Message{
		To:      r.inbox,
		ReplyTo: fmt.Sprintf("%s <%s>", sub.Name, sub.Email),
		Subject: fmt.Sprintf("[%s] Contact from %s", r.brand, sub.Name),
		Text:    text,
		HTML:    html,
	})
}

// Welcome greets a new newsletter subscriber.
func (r *Relay) Welcome(ctx context.Context, s domain.Subscription) (string, error) {
	text, err := r.tmpl.Render("welcome.txt", map[string]any{"name": s.Name, "brand": r.brand})
	if err != nil {
		return "", err
	}
	return r.sender.Send(ctx, Message{
		To:      s.Email,
		Subject: "Welcome to the " + r.brand + " newsletter",
		Text:    text,
	})
}
