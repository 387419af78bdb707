package contactform

import (
	"sync"

	"go.uber.org/zap"
)

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
)

// Toast is a transient user-facing notification.
type Toast struct {
	Variant     Variant
	Title       string
	Description string
}

type Notifier interface {
	Notify(t Toast)
}

// Recorder keeps every toast it is given.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// LogNotifier writes toasts to a logger; used by the CLI.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(t Toast) {
	l := n.Log
	if l == nil {
		l = zap.NewNop()
	}
	fields := []zap.Field{zap.String("title", t.Title), zap.String("description", t.Description)}
	if t.Variant == VariantError {
		l.Warn("contact.toast", fields...)
		return
	}
	l.Info("contact.toast", fields...)
}
