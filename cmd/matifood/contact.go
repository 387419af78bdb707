package main

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"matifood/internal/config"
	"matifood/internal/contactform"
	applog "matifood/internal/log"
	"matifood/internal/verification"
)

type contactFlags struct {
	name, email, message string
	newsletter           bool
	token                string
	backend              string
	development          bool
	skipScript           bool
}

func newContactCmd() *cobra.Command {
	contact := &cobra.Command{
		Use:   "contact",
		Short: "Contact form tools",
	}
	var f contactFlags
	send := &cobra.Command{
		Use:   "send",
		Short: "Submit the contact form to a backend",
		Long: `Fill in and submit the contact form exactly as the website does.

A reCAPTCHA token solved elsewhere can be passed with --token. Without one the
submission is refused unless --dev is set, in which case the development
bypass token is sent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Parse(nil)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("backend") {
				f.backend = cfg.BackendURL
			}
			if !cmd.Flags().Changed("dev") {
				f.development = cfg.IsDevelopment()
			}
			logger, err := applog.New(cfg.LogLevel, "")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return sendContact(cmd.Context(), cfg, f, resty.New(), logger)
		},
	}
	send.Flags().StringVar(&f.name, "name", "", "your name (required)")
	send.Flags().StringVar(&f.email, "email", "", "your email (required)")
	send.Flags().StringVar(&f.message, "message", "", "message text")
	send.Flags().BoolVar(&f.newsletter, "newsletter", false, "subscribe to the newsletter")
	send.Flags().StringVar(&f.token, "token", "", "solved reCAPTCHA token")
	send.Flags().StringVar(&f.backend, "backend", "", "backend base URL (default $BACKEND_URL)")
	send.Flags().BoolVar(&f.development, "dev", false, "development mode (default from $APP_ENV)")
	send.Flags().BoolVar(&f.skipScript, "skip-script-check", false, "do not probe the challenge script URL")
	contact.AddCommand(send)
	return contact
}

func sendContact(ctx context.Context, cfg config.Config, f contactFlags, client *resty.Client, logger *zap.Logger) error {
	form := contactform.New(contactform.Options{
		BaseURL:     f.backend,
		Development: f.development,
		Client:      client,
		Notifier:    contactform.LogNotifier{Log: logger},
		Log:         logger,
	})

	if f.token != "" {
		fetch := verification.HTTPScriptFetch(client, cfg.Recaptcha.ScriptURL)
		if f.skipScript {
			fetch = func(context.Context) error { return nil }
		}
		challenge := verification.NewTokenChallenge(f.token)
		widget := verification.NewWidget(verification.NewOnceLoader(fetch), challenge,
			cfg.Recaptcha.SiteKey, "contact-captcha", form.Callbacks(), logger)
		form.SetWidget(widget)
		defer widget.Unmount()

		if err := widget.Mount(ctx); err != nil {
			logger.Warn("contact.widget.unavailable", zap.Error(err))
		} else if err := challenge.Solve(); err != nil {
			return err
		}
	}

	for field, v := range map[string]any{
		contactform.FieldName:       f.name,
		contactform.FieldEmail:      f.email,
		contactform.FieldMessage:    f.message,
		contactform.FieldNewsletter: f.newsletter,
	} {
		if err := form.UpdateField(field, v); err != nil {
			return err
		}
	}
	if err := form.Submit(ctx); err != nil {
		return fmt.Errorf("contact not sent: %w", err)
	}
	return nil
}
