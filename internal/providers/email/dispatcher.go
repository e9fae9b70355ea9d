package email

import (
	"context"
	"errors"
	"net/textproto"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	defaultSendTimeout = 10 * time.Second
	defaultMaxTries    = 3
)

// Dispatcher sends rendered templates through the configured provider with
// bounded retries. Delivery is best effort; callers never fail on email errors.
type Dispatcher struct {
	log      *zap.Logger
	provider Provider
	metrics  *metrics.Metrics
	timeout  time.Duration
	maxTries uint
}

func NewDispatcher(log *zap.Logger, provider Provider, m *metrics.Metrics, cfg config.Config) *Dispatcher {
	timeout := cfg.Email.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	maxTries := uint(defaultMaxTries)
	if cfg.Email.MaxRetries > 0 {
		maxTries = uint(cfg.Email.MaxRetries)
	}
	return &Dispatcher{
		log:      log.Named("email.dispatcher"),
		provider: provider,
		metrics:  m,
		timeout:  timeout,
		maxTries: maxTries,
	}
}

// Send renders and delivers synchronously, retrying transient failures.
func (d *Dispatcher) Send(ctx context.Context, templateName string, to []string, subject string, data map[string]any) error {
	body, err := Render(templateName, data)
	if err != nil {
		d.metrics.IncEmailDelivery(templateName, metrics.EmailStatusDropped)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	operation := func() (struct{}, error) {
		err := d.provider.Send(ctx, to, subject, body)
		if err == nil {
			return struct{}{}, nil
		}
		if isPermanentSMTPErr(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(d.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			d.metrics.IncEmailRetry()
			d.log.Warn("email send retrying",
				zap.String("template", templateName),
				zap.Duration("next_attempt_in", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		d.metrics.IncEmailDelivery(templateName, metrics.EmailStatusFailed)
		d.log.Error("email send failed",
			zap.String("template", templateName),
			zap.Error(err))
		return err
	}

	d.metrics.IncEmailDelivery(templateName, metrics.EmailStatusSent)
	return nil
}

// Go delivers in the background, detached from the request context.
func (d *Dispatcher) Go(templateName string, to []string, subject string, data map[string]any) {
	go func() {
		// Errors are logged and counted inside Send.
		_ = d.Send(context.Background(), templateName, to, subject, data)
	}()
}

// isPermanentSMTPErr reports 5xx server replies, which do not recover on retry.
func isPermanentSMTPErr(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 500
	}
	return false
}
