package config

import (
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const ModeDevelopment = "development"

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Mode        string `env:"APP_ENV" envDefault:"production"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./web/templates"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"./web/static"`
	LogFile     string `env:"LOG_FILE"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	PIIKey      string `env:"PII_HASH_KEY"`
	BodyLimit   int    `env:"BODY_LIMIT" envDefault:"1048576"`

	// BackendURL is where the contact form controller posts submissions.
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	RedisURL   string `env:"REDIS_URL"`

	// MetricsToken protects /metrics when set.
	MetricsToken string `env:"METRICS_TOKEN"`

	Recaptcha RecaptchaConfig `envPrefix:"RECAPTCHA_"`
	Mail      MailConfig      `envPrefix:"MAILGUN_"`
}

type RecaptchaConfig struct {
	SiteKey   string `env:"SITE_KEY"`
	Secret    string `env:"SECRET"`
	ScriptURL string `env:"SCRIPT_URL" envDefault:"https://www.google.com/recaptcha/api.js?render=explicit"`
	VerifyURL string `env:"VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
}

type MailConfig struct {
	Domain         string `env:"DOMAIN"`
	APIKey         string `env:"API_KEY"`
	APIBase        string `env:"API_BASE"`
	From           string `env:"FROM" envDefault:"Mati Food <no-reply@matifood.com>"`
	Inbox          string `env:"INBOX" envDefault:"hello@matifood.com"`
	NewsletterList string `env:"NEWSLETTER_LIST"`
}

// Configured reports whether Mailgun credentials are present.
func (m MailConfig) Configured() bool {
	return m.Domain != "" && m.APIKey != ""
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), ModeDevelopment)
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
	cfg, err := Parse(nil)
	if err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s APP_ENV=%s TEMPLATE_DIR=%s BACKEND_URL=%s LOG_FILE=%s MAILGUN=%t REDIS=%t",
		cfg.Port, cfg.Mode, cfg.TemplateDir, cfg.BackendURL, cfg.LogFile, cfg.Mail.Configured(), cfg.RedisURL != "")
	return cfg, nil
}

// Parse builds a Config from the given variables, or from the process
// environment when vars is nil.
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, err
	}
	cfg.Port = strings.TrimPrefix(strings.TrimSpace(cfg.Port), ":")
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1 << 20
	}
	return cfg, nil
}
