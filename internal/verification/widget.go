// Package verification bridges the third-party bot-verification challenge
// (reCAPTCHA) into the application: a widget state machine driven by a shared
// script loader, the page markup for the widget, and server-side token checks.
package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DevBypassToken is sent in place of a real token when the contact form runs
// in development mode.
const DevBypassToken = "dev-bypass-token"

var ErrUnavailable = errors.New("verification: challenge unavailable")

type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateVerified
	StateExpired
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateVerified:
		return "verified"
	case StateExpired:
		return "expired"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ScriptLoader makes the third-party challenge script available.
type ScriptLoader interface {
	Load(ctx context.Context) error
}

type WidgetID int

type Callbacks struct {
	OnVerify  func(token string)
	OnExpired func()
	OnError   func(err error)
}

// ChallengeAPI is the global render/reset API exposed by the loaded script.
type ChallengeAPI interface {
	Render(container, siteKey string, cb Callbacks) (WidgetID, error)
	Reset(id WidgetID) error
}

// Widget owns one rendered challenge instance.
type Widget struct {
	loader    ScriptLoader
	api       ChallengeAPI
	siteKey   string
	container string
	owner     Callbacks
	log       *zap.Logger

	mu       sync.Mutex
	state    State
	id       WidgetID
	rendered bool
	renders  int
	gen      int
	lastErr  error
}

func NewWidget(loader ScriptLoader, api ChallengeAPI, siteKey, container string, owner Callbacks, log *zap.Logger) *Widget {
	if log == nil {
		log = zap.NewNop()
	}
	return &Widget{
		loader:    loader,
		api:       api,
		siteKey:   siteKey,
		container: container,
		owner:     owner,
		log:       log.With(zap.String("widget", container)),
	}
}

// Mount loads the script if needed and renders the challenge once. Calls made
// while a mount is in flight or a widget is already rendered are no-ops. A
// failure leaves the widget in StateError and returns an error wrapping
// ErrUnavailable.
func (w *Widget) Mount(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.state == StateError:
		err := w.lastErr
		w.mu.Unlock()
		return err
	case w.rendered, w.state == StateLoading:
		w.mu.Unlock()
		return nil
	}
	w.state = StateLoading
	gen := w.gen
	w.mu.Unlock()

	if err := w.loader.Load(ctx); err != nil {
		return w.fail(gen, "load", err)
	}

	w.mu.Lock()
	if w.gen != gen || w.state != StateLoading {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	id, err := w.safeRender()
	if err != nil {
		return w.fail(gen, "render", err)
	}

	w.mu.Lock()
	if w.gen != gen {
		// unmounted while rendering
		w.mu.Unlock()
		w.safeReset(id)
		return nil
	}
	w.id = id
	w.rendered = true
	w.renders++
	if w.state == StateLoading {
		w.state = StateReady
	}
	w.mu.Unlock()
	w.log.Debug("verification.widget.ready")
	return nil
}

// Reset asks the third party to issue a fresh challenge.
func (w *Widget) Reset() {
	w.mu.Lock()
	if !w.rendered || w.state == StateError {
		w.mu.Unlock()
		return
	}
	id := w.id
	w.mu.Unlock()

	w.safeReset(id)

	w.mu.Lock()
	if w.rendered && w.state != StateError {
		w.state = StateReady
	}
	w.mu.Unlock()
}

// Unmount releases the widget. Reset failures are logged and swallowed.
func (w *Widget) Unmount() {
	w.mu.Lock()
	rendered, id := w.rendered, w.id
	w.rendered = false
	w.state = StateUnloaded
	w.lastErr = nil
	w.gen++
	w.mu.Unlock()

	if rendered {
		w.safeReset(id)
	}
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Renders counts render registrations over the widget's lifetime.
func (w *Widget) Renders() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renders
}

func (w *Widget) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *Widget) handleVerify(token string) {
	w.mu.Lock()
	if w.state == StateError || w.state == StateUnloaded {
		w.mu.Unlock()
		return
	}
	w.state = StateVerified
	w.mu.Unlock()
	if w.owner.OnVerify != nil {
		w.owner.OnVerify(token)
	}
}

func (w *Widget) handleExpired() {
	w.mu.Lock()
	if w.state == StateError || w.state == StateUnloaded {
		w.mu.Unlock()
		return
	}
	w.state = StateExpired
	w.mu.Unlock()
	if w.owner.OnExpired != nil {
		w.owner.OnExpired()
	}
}

func (w *Widget) handleError(err error) {
	w.mu.Lock()
	gen := w.gen
	w.mu.Unlock()
	_ = w.fail(gen, "challenge", err)
}

func (w *Widget) fail(gen int, stage string, cause error) error {
	err := fmt.Errorf("%w: %s: %v", ErrUnavailable, stage, cause)
	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return err
	}
	w.state = StateError
	w.lastErr = err
	w.mu.Unlock()

	w.log.Warn("verification.widget.error", zap.String("stage", stage), zap.Error(cause))
	if w.owner.OnError != nil {
		w.owner.OnError(err)
	}
	return err
}

func (w *Widget) safeRender() (id WidgetID, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()
	return w.api.Render(w.container, w.siteKey, Callbacks{
		OnVerify:  w.handleVerify,
		OnExpired: w.handleExpired,
		OnError:   w.handleError,
	})
}

func (w *Widget) safeReset(id WidgetID) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Warn("verification.widget.reset.fail", zap.Any("panic", r))
		}
	}()
	if err := w.api.Reset(id); err != nil {
		w.log.Warn("verification.widget.reset.fail", zap.Error(err))
	}
}
