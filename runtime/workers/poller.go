package workers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gookit/color"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/session"
)

// PollerWorker tails the relay for new messages and prints the ones the
// user did not write themselves. A failed poll is logged and retried on
// the next tick, the server going away must not kill the console.
type PollerWorker struct {
	log      *slog.Logger
	client   contract.IChatClient
	session  *session.Session
	out      io.Writer
	interval time.Duration
}

func NewPollerWorker(log *slog.Logger, client contract.IChatClient,
	sess *session.Session, out io.Writer, interval time.Duration) *PollerWorker {
	return &PollerWorker{log: log, client: client, session: sess, out: out, interval: interval}
}

func (w *PollerWorker) Run(ctx context.Context) error {
	w.log.Debug("Starting poller worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping poller worker")
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *PollerWorker) poll(ctx context.Context) {
	messages, total, err := w.client.GetMessages(ctx, w.session.LastSeen())
	if err != nil {
		w.log.Debug("Poll failed", "error", err)
		return
	}

	for _, message := range messages {
		// Own messages were already echoed at send time
		if message.Username == w.session.Username() {
			continue
		}
		line := fmt.Sprintf("[%s] %s: %s",
			message.At.Format(domain.WireTimeLayout), message.Username, message.Text)
		fmt.Fprintf(w.out, "\n%s\n", color.New(color.FgLightCyan).Render(line))
		fmt.Fprintf(w.out, "\n%s> ", w.session.Username())
	}
	w.session.AdvanceTo(total)
}
