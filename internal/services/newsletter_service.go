package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"matifood/internal/domain"
	applog "matifood/internal/log"
	"matifood/internal/mail"
	"matifood/internal/metrics"
	"matifood/internal/validate"
)

// Welcomer greets new subscribers.
type Welcomer interface {
	Welcome(ctx context.Context, s domain.Subscription) (string, error)
}

type NewsletterService struct {
	Subscribers mail.Subscribers
	Welcome     Welcomer
	Metrics     *metrics.Metrics
	Log         *zap.Logger
}

func NewNewsletterService(subs mail.Subscribers, welcome Welcomer, m *metrics.Metrics, log *zap.Logger) *NewsletterService {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NewsletterService{Subscribers: subs, Welcome: welcome, Metrics: m, Log: log}
}

// Subscribe adds email to the list, re-activating it if it had unsubscribed.
// A welcome mail goes out only for addresses the list had not seen.
func (s *NewsletterService) Subscribe(ctx context.Context, email, name string) (domain.Subscription, bool, error) {
	addr, ok := validate.Email(email)
	if !ok {
		return domain.Subscription{}, false, invalid("Invalid email")
	}
	if name != "" {
		if name, ok = validate.Name(name); !ok {
			return domain.Subscription{}, false, invalid("Invalid name")
		}
	}
	created, err := s.Subscribers.Subscribe(ctx, addr, name)
	if err != nil {
		return domain.Subscription{}, false, err
	}
	sub := domain.Subscription{Email: addr, Name: name, Subscribed: true}
	s.Metrics.NewsletterChanges.WithLabelValues("subscribe").Inc()
	s.Log.Info("newsletter.subscribe", zap.String("email", applog.Fingerprint(addr)), zap.Bool("new", created))

	if created && s.Welcome != nil {
		if _, err := s.Welcome.Welcome(ctx, sub); err != nil {
			s.Log.Warn("newsletter.welcome.fail", zap.String("email", applog.Fingerprint(addr)), zap.Error(err))
		}
	}
	return sub, created, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	addr, ok := validate.Email(email)
	if !ok {
		return invalid("Invalid email")
	}
	if err := s.Subscribers.Unsubscribe(ctx, addr); err != nil {
		if !errors.Is(err, mail.ErrNotSubscribed) {
			s.Log.Error("newsletter.unsubscribe.fail", zap.String("email", applog.Fingerprint(addr)), zap.Error(err))
		}
		return err
	}
	s.Metrics.NewsletterChanges.WithLabelValues("unsubscribe").Inc()
	s.Log.Info("newsletter.unsubscribe", zap.String("email", applog.Fingerprint(addr)))
	return nil
}

func (s *NewsletterService) Count(ctx context.Context) (int64, error) {
	return s.Subscribers.Count(ctx)
}
