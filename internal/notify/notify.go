package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Level classifies a user-facing status message
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a human-readable status message shown to the shopper
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives status messages emitted by cart and catalog operations
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to the Notifier interface
type Func func(n Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification
var Discard Notifier = Func(func(Notification) {})

// Recorder collects notifications in the order they were emitted
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify appends n
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns a copy of everything recorded so far
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Reset forgets all recorded notifications
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// LogNotifier writes notifications to a structured logger
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by zap
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs errors at warn level and everything else at debug
func (l *LogNotifier) Notify(n Notification) {
	fields := []zap.Field{zap.String("notification_level", string(n.Level))}
	if n.Level == LevelError {
		l.logger.Warn(n.Message, fields...)
		return
	}
	l.logger.Debug(n.Message, fields...)
}

// Multi fans a notification out to several notifiers; nil entries are skipped
func Multi(notifiers ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, target := range notifiers {
			if target != nil {
				target.Notify(n)
			}
		}
	})
}

type contextKey struct{}

// WithNotifier attaches a request-scoped notifier to ctx
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, contextKey{}, n)
}

// FromContext returns the notifier stored in ctx, or Discard
func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(contextKey{}).(Notifier); ok && n != nil {
		return n
	}
	return Discard
}

// Success is shorthand for a success-level notification
func Success(msg string) Notification { return Notification{Level: LevelSuccess, Message: msg} }

// Info is shorthand for an info-level notification
func Info(msg string) Notification { return Notification{Level: LevelInfo, Message: msg} }

// Error is shorthand for an error-level notification
func Error(msg string) Notification { return Notification{Level: LevelError, Message: msg} }
