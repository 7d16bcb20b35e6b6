package obs

import (
	"time"

	"github.com/getsentry/sentry-go"
)

func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError forwards an unexpected error to Sentry. No-op when the
// client was never initialised.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// CapturePanic reports a recovered panic before the error handler turns it
// into a 500.
func CapturePanic(value any, path string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("panic", value)
		scope.SetExtra("path", path)
		sentry.CaptureMessage("panic in request")
	})
}
