package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/docstore"
)

// legacyDateFormat is the pre-migration entry ID format.
const legacyDateFormat = "02-01-2006"

// MigrateDateIDs rekeys roster entry documents from the legacy DD-MM-YYYY
// ID format to ISO YYYY-MM-DD. Each rekey is a set of the new document and
// a delete of the old one, applied in batches capped at the store's
// per-batch operation limit. Returns the number of migrated entries.
func (d *DB) MigrateDateIDs(ctx context.Context, logger *zap.Logger) (int, error) {
	docs, err := d.store.List(ctx, CollectionEntries)
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}

	var ops []docstore.Op
	migrated := 0
	for id, data := range docs {
		parsed, err := time.Parse(legacyDateFormat, id)
		if err != nil {
			// Already in the ISO format, or not a date-keyed document.
			continue
		}

		newID := parsed.Format("2006-01-02")
		if newID == id {
			continue
		}
		if _, exists := docs[newID]; exists {
			logger.Warn("Skipping migration, target already exists",
				zap.String("legacy_id", id),
				zap.String("new_id", newID))
			continue
		}

		ops = append(ops,
			docstore.Op{Kind: docstore.OpSet, Collection: CollectionEntries, ID: newID, Data: data},
			docstore.Op{Kind: docstore.OpDelete, Collection: CollectionEntries, ID: id},
		)
		migrated++
	}

	for start := 0; start < len(ops); start += docstore.MaxBatchOps {
		end := min(start+docstore.MaxBatchOps, len(ops))
		if err := d.store.ApplyBatch(ctx, ops[start:end]); err != nil {
			return 0, fmt.Errorf("failed to apply migration batch: %w", err)
		}
		logger.Info("Applied migration batch", zap.Int("operations", end-start))
	}

	return migrated, nil
}
