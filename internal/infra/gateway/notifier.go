package gateway

import (
	"context"
	"log/slog"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// LogNotifier is the notification sink. Deliveries are announcements, not
// part of any request contract, so it only records them; swapping in a mail
// or webhook sink later does not change any caller.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) PropertyListed(ctx context.Context, p domain.Property) {
	slog.InfoContext(ctx, "notify: property listed",
		slog.String("property", p.ID.String()),
		slog.String("city", p.City),
	)
}

func (n *LogNotifier) PropertyUpdate(ctx context.Context, p domain.Property) {
	slog.InfoContext(ctx, "notify: property update",
		slog.String("property", p.ID.String()),
		slog.String("status", string(p.Status)),
	)
}

func (n *LogNotifier) ForeclosureUpdate(ctx context.Context, b domain.ForeclosureBid) {
	slog.InfoContext(ctx, "notify: foreclosure bid update",
		slog.String("bid", b.ID.String()),
		slog.String("status", string(b.Status)),
	)
}
