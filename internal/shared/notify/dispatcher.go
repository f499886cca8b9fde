package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sudarsan9786/nool-erp/internal/metrics"
	"go.uber.org/zap"
)

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("Vendor notification (not delivered)",
		zap.String("kind", msg.Kind),
		zap.String("to", FormatPhone(msg.Phone)),
		zap.Int64("chat_id", msg.ChatID),
		zap.String("body", msg.Body),
	)
	return nil
}

// Dispatcher sends notifications in the background. Failures are logged and
// counted, never returned to the caller.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(notifier Notifier, logger *zap.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{notifier: notifier, logger: logger, timeout: timeout}
}

// Dispatch queues msg for delivery and returns immediately.
func (d *Dispatcher) Dispatch(msg Message) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("Notification dropped after shutdown", zap.String("kind", msg.Kind))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.send(ctx, msg)
	}()
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	channel := d.notifier.Name()
	err := d.notifier.Send(ctx, msg)
	switch {
	case err == nil:
		metrics.Notifications.WithLabelValues(channel, msg.Kind, "sent").Inc()
	case errors.Is(err, ErrNoRecipient):
		metrics.Notifications.WithLabelValues(channel, msg.Kind, "skipped").Inc()
		d.logger.Info("Notification skipped, vendor has no recipient on channel",
			zap.String("channel", channel), zap.String("kind", msg.Kind))
	default:
		metrics.Notifications.WithLabelValues(channel, msg.Kind, "failed").Inc()
		d.logger.Error("Notification failed",
			zap.String("channel", channel), zap.String("kind", msg.Kind), zap.Error(err))
	}
}

// Close stops accepting messages and waits for in-flight sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
