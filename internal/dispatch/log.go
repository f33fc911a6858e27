package dispatch

import (
	"context"
	"log/slog"
)

// LogNotifier writes summaries to the structured log. It is the default sink
// when no external channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, summary string) error {
	n.logger.Info("operator notification", "summary", summary)
	return nil
}
