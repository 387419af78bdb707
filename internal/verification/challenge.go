package verification

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNoChallenge = errors.New("verification: no rendered challenge")

// TokenChallenge is a ChallengeAPI for headless clients: the challenge is
// solved out of band and the resulting token handed in up front.
type TokenChallenge struct {
	mu      sync.Mutex
	token   string
	next    WidgetID
	active  map[WidgetID]Callbacks
	renders int
	resets  int
}

func NewTokenChallenge(token string) *TokenChallenge {
	return &TokenChallenge{token: token, active: map[WidgetID]Callbacks{}}
}

func (t *TokenChallenge) Render(container, siteKey string, cb Callbacks) (WidgetID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.active[t.next] = cb
	t.renders++
	return t.next, nil
}

func (t *TokenChallenge) Reset(id WidgetID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[id]; !ok {
		return fmt.Errorf("verification: unknown widget %d", id)
	}
	t.resets++
	return nil
}

// Solve reports the token to the most recently rendered widget.
func (t *TokenChallenge) Solve() error {
	cb, err := t.latest()
	if err != nil {
		return err
	}
	if t.token == "" {
		return fmt.Errorf("%w: no token supplied", ErrUnavailable)
	}
	if cb.OnVerify != nil {
		cb.OnVerify(t.token)
	}
	return nil
}

// Expire signals that the previously issued token lapsed.
func (t *TokenChallenge) Expire() error {
	cb, err := t.latest()
	if err != nil {
		return err
	}
	if cb.OnExpired != nil {
		cb.OnExpired()
	}
	return nil
}

func (t *TokenChallenge) Renders() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renders
}

func (t *TokenChallenge) Resets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resets
}

func (t *TokenChallenge) latest() (Callbacks, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cb, ok := t.active[t.next]
	if !ok {
		return Callbacks{}, ErrNoChallenge
	}
	return cb, nil
}
