package handlers

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"matifood/internal/catalog"
	"matifood/internal/config"
	"matifood/internal/mail"
	"matifood/internal/metrics"
	"matifood/internal/ratelimit"
	"matifood/internal/services"
	"matifood/internal/verification"
)

const verifyTimeout = 10 * time.Second

type Deps struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Metrics *metrics.Metrics
	Log     *zap.Logger

	PageHandler      *PageHandler
	ContactHandler   *ContactHandler
	CatalogHandler   *CatalogHandler
	AnalyticsHandler *AnalyticsHandler
	HealthHandler    *HealthHandler

	// LimiterStorage backs the rate limiters; nil keeps them in memory.
	LimiterStorage fiber.Storage
}

// Services groups the collaborators handlers need, so tests can swap any of
// them for fakes.
type Services struct {
	Verifier    verification.Verifier
	Relay       *mail.Relay
	Subscribers mail.Subscribers
}

// NewDeps wires the production collaborators from cfg: reCAPTCHA siteverify,
// Mailgun (or a log relay and in-memory list) and optional Redis storage.
func NewDeps(ctx context.Context, cfg config.Config, cat *catalog.Catalog, log *zap.Logger) *Deps {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().SetTimeout(verifyTimeout)
	svc := Services{
		Verifier: verification.NewSiteVerifier(client, cfg.Recaptcha.VerifyURL, cfg.Recaptcha.Secret, cfg.IsDevelopment(), log),
	}

	var sender mail.Sender = mail.LogSender{Log: log}
	svc.Subscribers = mail.NewMemoryList()
	if cfg.Mail.Configured() {
		sender = mail.NewMailgunSender(cfg.Mail, log)
		if cfg.Mail.NewsletterList != "" {
			svc.Subscribers = mail.NewMailgunList(cfg.Mail, log)
		}
	} else {
		log.Warn("mail.unconfigured", zap.String("fallback", "log relay, in-memory newsletter"))
	}
	svc.Relay = mail.NewRelay(sender, mail.NewTemplates(), cfg.Mail.Inbox, cat.Brand().Name)

	d := NewDepsWith(cfg, cat, svc, log)
	if cfg.RedisURL != "" {
		store, err := ratelimit.Open(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("ratelimit.redis.unavailable", zap.Error(err))
		} else {
			d.LimiterStorage = store
		}
	}
	return d
}

func NewDepsWith(cfg config.Config, cat *catalog.Catalog, svc Services, log *zap.Logger) *Deps {
	if log == nil {
		log = zap.NewNop()
	}
	m := metrics.New()
	var welcome services.Welcomer
	if svc.Relay != nil {
		welcome = svc.Relay
	}
	newsletter := services.NewNewsletterService(svc.Subscribers, welcome, m, log)
	stats := services.NewStatsService(cat, newsletter, log)
	var relay services.ContactRelay
	if svc.Relay != nil {
		relay = svc.Relay
	}
	contact := services.NewContactService(svc.Verifier, relay, newsletter, stats, m, log)
	analytics := services.NewAnalyticsService(m, log)

	return &Deps{
		Config:  cfg,
		Catalog: cat,
		Metrics: m,
		Log:     log,

		PageHandler:      &PageHandler{Catalog: cat, Config: cfg},
		ContactHandler:   &ContactHandler{Contact: contact, Newsletter: newsletter},
		CatalogHandler:   &CatalogHandler{Catalog: cat},
		AnalyticsHandler: &AnalyticsHandler{Stats: stats, Analytics: analytics},
		HealthHandler:    &HealthHandler{MailConfigured: cfg.Mail.Configured()},
	}
}

// Close releases external connections.
func (d *Deps) Close() error {
	if d.LimiterStorage != nil {
		return d.LimiterStorage.Close()
	}
	return nil
}
