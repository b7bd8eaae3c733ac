// Package notify is the console's toast rail: transient, dismissible
// notifications emitted by the wizard and dashboard operations. Emitting
// never blocks the operation that failed or succeeded; slow consumers lose
// notifications rather than stalling the UI.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is one transient user-facing message.
type Notification struct {
	ID      string
	Level   Level
	Message string
	Time    time.Time
}

// Center fans notifications out to subscribers.
type Center struct {
	mu   sync.Mutex
	subs map[string]chan Notification
	log  *zap.Logger
	now  func() time.Time
}

// NewCenter builds a notification center.
func NewCenter(logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{
		subs: make(map[string]chan Notification),
		log:  logger,
		now:  time.Now,
	}
}

// Subscribe registers a consumer. The returned cancel func must be called
// when the consumer goes away.
func (c *Center) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 32)
	id := uuid.NewString()

	c.mu.Lock()
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Push emits a notification to every subscriber without blocking.
func (c *Center) Push(level Level, message string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Time:    c.now(),
	}

	c.log.Debug("notification", zap.String("level", string(level)), zap.String("message", message))

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subs {
		select {
		case sub <- n:
		default:
		}
	}
	return n
}

// Success emits a success-level notification.
func (c *Center) Success(message string) { c.Push(LevelSuccess, message) }

// Info emits an info-level notification.
func (c *Center) Info(message string) { c.Push(LevelInfo, message) }

// Error emits an error-level notification.
func (c *Center) Error(message string) { c.Push(LevelError, message) }
