package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/docstore"
)

// notifyChannel is the pg_notify channel the documents trigger publishes on.
const notifyChannel = "document_changes"

// changePayload mirrors the trigger's json_build_object payload. The
// notify payload carries only the document address - bodies can exceed the
// notification size limit, so they are re-read on receipt.
type changePayload struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Deleted    bool   `json:"deleted"`
}

// Watch streams changes to one collection until ctx is cancelled. It holds
// a dedicated connection on LISTEN for the lifetime of the stream.
func (db *DB) Watch(ctx context.Context, collection string) (<-chan docstore.Event, error) {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	events := make(chan docstore.Event, 64)

	go func() {
		defer close(events)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					db.logger.Error("Watch stream terminated", zap.Error(err))
				}
				return
			}

			var payload changePayload
			if err := json.Unmarshal([]byte(notification.Payload), &payload); err != nil {
				db.logger.Warn("Dropping malformed change notification", zap.Error(err))
				continue
			}
			if payload.Collection != collection {
				continue
			}

			event := docstore.Event{Collection: payload.Collection, ID: payload.ID, Deleted: payload.Deleted}
			if !payload.Deleted {
				// Re-read the current body; the document may have been
				// deleted between notify and read.
				data, err := db.Get(ctx, payload.Collection, payload.ID)
				if err != nil {
					if errors.Is(err, docstore.ErrNotFound) {
						event.Deleted = true
					} else {
						db.logger.Warn("Failed to read changed document",
							zap.String("collection", payload.Collection),
							zap.String("id", payload.ID),
							zap.Error(err))
						continue
					}
				}
				event.Data = data
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
