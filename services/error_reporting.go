package services

import (
	"log"

	"github.com/getsentry/sentry-go"
)

// ReportError logs a swallowed failure and forwards it to Sentry when a client is configured.
func ReportError(tag string, err error) {
	if err == nil {
		return
	}
	log.Printf("[%s] %v", tag, err)
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("component", tag)
			hub.CaptureException(err)
		})
	}
}
