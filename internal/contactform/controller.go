// Package contactform implements the contact form workflow: field state,
// the verification gate, the POST to the backend and the resulting toasts.
package contactform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"matifood/internal/verification"
)

const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldMessage    = "message"
	FieldNewsletter = "newsletter"
)

const genericFailure = "Failed to send message. Please try again."

// State is the form as the user sees it. An empty Token means no completed
// challenge.
type State struct {
	Name       string
	Email      string
	Message    string
	Newsletter bool
	Token      string
}

// Resetter asks the verification widget for a fresh challenge.
type Resetter interface {
	Reset()
}

type payload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	Newsletter     bool   `json:"newsletter"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type apiError struct {
	Detail string `json:"detail"`
}

type Options struct {
	// BaseURL of the backend; the form posts to BaseURL + "/api/contact".
	BaseURL     string
	Development bool
	Client      *resty.Client
	Notifier    Notifier
	Widget      Resetter
	Log         *zap.Logger
}

type Controller struct {
	client   *resty.Client
	endpoint string
	dev      bool
	notify   Notifier
	widget   Resetter
	log      *zap.Logger

	mu         sync.Mutex
	state      State
	submitting atomic.Bool
}

func New(opts Options) *Controller {
	client := opts.Client
	if client == nil {
		client = resty.New()
	}
	notify := opts.Notifier
	if notify == nil {
		notify = &Recorder{}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		client:   client,
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/api/contact",
		dev:      opts.Development,
		notify:   notify,
		widget:   opts.Widget,
		log:      log,
	}
}

// SetWidget attaches the widget after construction, for owners that build the
// widget with the controller's callbacks.
func (c *Controller) SetWidget(w Resetter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.widget = w
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsSubmitting() bool { return c.submitting.Load() }

// UpdateField assigns value to the named field without validating it.
func (c *Controller) UpdateField(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case FieldName, FieldEmail, FieldMessage:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants a string, got %T", ErrFieldType, name, value)
		}
		switch name {
		case FieldName:
			c.state.Name = s
		case FieldEmail:
			c.state.Email = s
		default:
			c.state.Message = s
		}
	case FieldNewsletter:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants a bool, got %T", ErrFieldType, name, value)
		}
		c.state.Newsletter = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetToken records a completed challenge.
func (c *Controller) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Token = token
}

// ExpireToken forgets a lapsed challenge.
func (c *Controller) ExpireToken() { c.SetToken("") }

// Callbacks wires the controller to a verification widget.
func (c *Controller) Callbacks() verification.Callbacks {
	return verification.Callbacks{
		OnVerify:  c.SetToken,
		OnExpired: c.ExpireToken,
		OnError: func(err error) {
			c.log.Warn("contact.verification.unavailable", zap.Error(err))
		},
	}
}

// Submit sends the form once. A call made while another is running returns
// ErrSubmitInProgress without side effects.
func (c *Controller) Submit(ctx context.Context) error {
	if !c.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInProgress
	}
	defer c.submitting.Store(false)

	st := c.State()
	if strings.TrimSpace(st.Name) == "" || strings.TrimSpace(st.Email) == "" {
		c.notify.Notify(Toast{
			Variant:     VariantError,
			Title:       "Missing information",
			Description: "Please fill in your name and email.",
		})
		return ErrRequiredField
	}

	token := st.Token
	if token == "" {
		if !c.dev {
			c.notify.Notify(Toast{
				Variant:     VariantError,
				Title:       "Verification Required",
				Description: "Please complete the reCAPTCHA verification.",
			})
			return ErrVerificationRequired
		}
		token = verification.DevBypassToken
	}

	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload{
			Name:           st.Name,
			Email:          st.Email,
			Message:        st.Message,
			Newsletter:     st.Newsletter,
			RecaptchaToken: token,
		}).
		SetError(&apiErr).
		Post(c.endpoint)
	if err != nil {
		c.log.Warn("contact.submit.transport", zap.Error(err))
		c.fail("")
		return &TransportError{Err: err}
	}
	if !resp.IsSuccess() {
		c.log.Info("contact.submit.rejected", zap.Int("status", resp.StatusCode()), zap.String("detail", apiErr.Detail))
		c.fail(apiErr.Detail)
		return &RejectedError{Status: resp.StatusCode(), Detail: apiErr.Detail}
	}

	c.mu.Lock()
	c.state = State{}
	w := c.widget
	c.mu.Unlock()
	if w != nil {
		w.Reset()
	}
	c.notify.Notify(Toast{
		Variant:     VariantSuccess,
		Title:       "Message Sent!",
		Description: "Thank you for contacting us. We'll get back to you soon!",
	})
	return nil
}

func (c *Controller) fail(detail string) {
	desc := genericFailure
	if detail != "" {
		desc = detail
	}
	c.notify.Notify(Toast{Variant: VariantError, Title: "Error", Description: desc})
}
