package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(msg string) Notification { return Notification{Level: LevelSuccess, Message: msg} }
func Info(msg string) Notification    { return Notification{Level: LevelInfo, Message: msg} }
func Warning(msg string) Notification { return Notification{Level: LevelWarning, Message: msg} }
func Error(msg string) Notification   { return Notification{Level: LevelError, Message: msg} }

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Log writes notifications to a zap logger.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log.Named("notify")}
}

func (l *Log) Notify(_ context.Context, n Notification) {
	level := zapcore.InfoLevel
	switch n.Level {
	case LevelWarning:
		level = zapcore.WarnLevel
	case LevelError:
		level = zapcore.ErrorLevel
	}
	l.log.Log(level, n.Message, zap.String("level", string(n.Level)))
}

// Recorder keeps every notification, in order.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

type ctxKey struct{}

// WithNotifier attaches a per-request notifier, e.g. a Recorder whose content
// goes back in an HTTP response.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(ctxKey{}).(Notifier); ok {
		return n
	}
	return nil
}

// Dispatch sends n to base and to the notifier attached to ctx, if any.
func Dispatch(ctx context.Context, base Notifier, n Notification) {
	Multi{base, FromContext(ctx)}.Notify(ctx, n)
}
