package common

import (
	"time"

	"github.com/getsentry/sentry-go"
)

var sentryEnabled bool

// InitObservability initializes Sentry error reporting when a DSN is
// configured. Without a DSN, CaptureError is a no-op.
func InitObservability(config *WorkerConfig) error {
	if config.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     config.SentryDSN,
		Release: "aestimo@" + GetVersion(),
	}); err != nil {
		return err
	}
	sentryEnabled = true
	return nil
}

// CaptureError reports a failure to the observability sink.
func CaptureError(err error) {
	if !sentryEnabled || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// FlushObservability drains pending events before process exit.
func FlushObservability() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
