package notify

import (
	"context"

	"github.com/dmitrijs2005/linkkeeper/internal/logging"
)

// LogNotifier writes messages to the log. Development only: links are
// visible to anyone reading the logs.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{log: l.With("module", "notify")}
}

func (n *LogNotifier) Deliver(ctx context.Context, to, subject, html string) error {
	n.log.Info(ctx, "message delivered to log", "to", to, "subject", subject, "body", html)
	return nil
}
