package jobs

import (
	"context"
	"log/slog"

	portssvc "github.com/quantabook/ledger_core/internal/core/ports/services"
)

// slogAlerter emits CRITICAL findings as structured log events. Downstream
// log pipelines route on the severity attribute.
type slogAlerter struct {
	logger *slog.Logger
}

// NewSlogAlerter creates an Alerter that writes findings to the given logger.
func NewSlogAlerter(logger *slog.Logger) portssvc.Alerter {
	return &slogAlerter{logger: logger}
}

func (a *slogAlerter) Critical(ctx context.Context, event string, details map[string]any) {
	attrs := make([]any, 0, 2*len(details)+2)
	attrs = append(attrs, slog.String("severity", "CRITICAL"))
	for k, v := range details {
		attrs = append(attrs, slog.Any(k, v))
	}
	a.logger.ErrorContext(ctx, event, attrs...)
}
