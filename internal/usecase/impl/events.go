package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/domain/entity"
	"authsvc/internal/domain/service"
)

// publishUserEvent is best effort: the identity change is already committed,
// so a broker failure is logged and never reported to the caller.
func publishUserEvent(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, eventType service.UserEventType, user *entity.User, now time.Time) {
	if publisher == nil {
		return
	}

	event := &service.UserEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: now.UTC(),
	}

	if err := publisher.PublishUserEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish user event",
			slog.String("type", string(eventType)),
			slog.Any("userID", user.ID),
			slog.Any("error", err),
		)
	}
}
