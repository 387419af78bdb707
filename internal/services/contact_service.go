package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"matifood/internal/domain"
	applog "matifood/internal/log"
	"matifood/internal/metrics"
	"matifood/internal/validate"
	"matifood/internal/verification"
)

// ContactRelay delivers an accepted submission to the team.
type ContactRelay interface {
	Contact(ctx context.Context, sub domain.ContactSubmission) (string, error)
}

type ContactInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	Newsletter     bool   `json:"newsletter"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type ContactService struct {
	Verifier   verification.Verifier
	Relay      ContactRelay
	Newsletter *NewsletterService
	Stats      *StatsService
	Metrics    *metrics.Metrics
	Log        *zap.Logger
	Now        func() time.Time
}

var plainText = bluemonday.StrictPolicy()

func NewContactService(v verification.Verifier, relay ContactRelay, nl *NewsletterService, stats *StatsService, m *metrics.Metrics, log *zap.Logger) *ContactService {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{Verifier: v, Relay: relay, Newsletter: nl, Stats: stats, Metrics: m, Log: log, Now: time.Now}
}

// Submit validates the fields, verifies the challenge token, cleans the
// fields, relays the message and, when asked, subscribes the sender to the
// newsletter. A newsletter failure does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, remoteIP string) (domain.ContactSubmission, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		s.Metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return domain.ContactSubmission{}, invalid("Invalid name")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		s.Metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return domain.ContactSubmission{}, invalid("Invalid email")
	}
	msg, ok := validate.Message(in.Message)
	if !ok {
		s.Metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return domain.ContactSubmission{}, invalid(fmt.Sprintf("Message must be at most %d characters", validate.MaxMessage))
	}

	// Tokens are single use; verify only input that passed validation.
	if err := s.Verifier.Verify(ctx, in.RecaptchaToken, remoteIP); err != nil {
		s.Metrics.VerificationFailures.WithLabelValues(verificationReason(err)).Inc()
		s.Metrics.ContactSubmissions.WithLabelValues("unverified").Inc()
		return domain.ContactSubmission{}, err
	}

	sub := domain.ContactSubmission{
		ID:         ulid.Make().String(),
		Name:       html.UnescapeString(plainText.Sanitize(name)),
		Email:      email,
		Message:    html.UnescapeString(plainText.Sanitize(msg)),
		Newsletter: in.Newsletter,
		Status:     "new",
		CreatedAt:  s.Now().UTC(),
	}

	msgID, err := s.Relay.Contact(ctx, sub)
	if err != nil {
		s.Metrics.ContactSubmissions.WithLabelValues("relay_failed").Inc()
		s.Log.Error("contact.relay.fail", zap.String("id", sub.ID), zap.Error(err))
		return domain.ContactSubmission{}, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	s.Metrics.ContactSubmissions.WithLabelValues("accepted").Inc()
	if s.Stats != nil {
		s.Stats.RecordContact()
	}
	s.Log.Info("contact.accepted",
		zap.String("id", sub.ID),
		zap.String("email", applog.Fingerprint(sub.Email)),
		zap.String("message_id", msgID),
	)

	if sub.Newsletter && s.Newsletter != nil {
		if _, _, err := s.Newsletter.Subscribe(ctx, sub.Email, sub.Name); err != nil {
			s.Log.Warn("contact.newsletter.fail", zap.String("id", sub.ID), zap.Error(err))
		}
	}
	return sub, nil
}

func verificationReason(err error) string {
	switch {
	case errors.Is(err, verification.ErrMissingToken):
		return "missing"
	case errors.Is(err, verification.ErrTokenRejected):
		return "rejected"
	case errors.Is(err, verification.ErrVerifierUnavailable):
		return "unavailable"
	}
	return "other"
}
