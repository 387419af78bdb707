package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrMissingToken        = errors.New("verification: token missing")
	ErrTokenRejected       = errors.New("verification: token rejected")
	ErrVerifierUnavailable = errors.New("verification: verifier unavailable")
)

// Verifier checks a challenge token on the server.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type siteVerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// SiteVerifier verifies tokens against the reCAPTCHA siteverify endpoint.
// With allowBypass set (development), DevBypassToken is accepted and a
// missing secret downgrades verification to a warning.
type SiteVerifier struct {
	client      *resty.Client
	url         string
	secret      string
	allowBypass bool
	log         *zap.Logger
}

func NewSiteVerifier(client *resty.Client, url, secret string, allowBypass bool, log *zap.Logger) *SiteVerifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &SiteVerifier{
		client:      client,
		url:         url,
		secret:      secret,
		allowBypass: allowBypass,
		log:         log.With(zap.String("component", "siteverify")),
	}
}

func (v *SiteVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	if token == DevBypassToken {
		if v.allowBypass {
			v.log.Debug("verification.bypass")
			return nil
		}
		return fmt.Errorf("%w: bypass token outside development", ErrTokenRejected)
	}
	if v.secret == "" {
		if v.allowBypass {
			v.log.Warn("verification.skipped", zap.String("reason", "no secret configured"))
			return nil
		}
		return fmt.Errorf("%w: no secret configured", ErrVerifierUnavailable)
	}

	form := map[string]string{"secret": v.secret, "response": token}
	if remoteIP != "" {
		form["remoteip"] = remoteIP
	}
	var out siteVerifyResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post(v.url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", ErrVerifierUnavailable, resp.StatusCode())
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrTokenRejected, strings.Join(out.ErrorCodes, ","))
	}
	return nil
}
