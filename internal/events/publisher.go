package events

import (
	"context"
	"time"

	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
)

// Emit publishes an activity and only logs a failure. Activity delivery is
// best effort and must never fail the request that produced it. A nil
// publisher is ignored.
func Emit(ctx context.Context, publisher types.ActivityPublisher, activity types.Activity) {
	if publisher == nil {
		return
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	// Detach from request cancellation so a client disconnect does not drop the event.
	ctx = context.WithoutCancel(ctx)
	if err := publisher.Publish(ctx, activity); err != nil {
		logger.GetLogger().Named("events").Warnw("Failed to publish activity",
			"type", activity.Type,
			"content_id", activity.ContentID,
			"error", err)
	}
}
