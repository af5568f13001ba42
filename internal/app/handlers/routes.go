package handlers

import (
	"group-mail/internal/app/audit"
	"group-mail/pkg/rest"
)

const apiGroup = "v1"

func Routes(emails *EmailHandler, signals *SignalHandler, auditHandler *audit.Handler, health *HealthHandler) []rest.Route {
	return []rest.Route{
		rest.NewRoute(rest.POST, apiGroup, "/emails", emails.SubmitEmail),
		rest.NewRoute(rest.GET, apiGroup, "/emails", emails.ListEmails),
		rest.NewRoute(rest.GET, apiGroup, "/emails/:id", emails.GetEmail),
		rest.NewRoute(rest.POST, apiGroup, "/signals", signals.BuildSignals),
		rest.NewRoute(rest.GET, apiGroup, "/audit", auditHandler.GetEntries),
		rest.NewRoute(rest.GET, apiGroup, "/audit/logs", auditHandler.GetLogEntries),
		rest.NewRoute(rest.GET, apiGroup, "/health", health.Health),
	}
}
